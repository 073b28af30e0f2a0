package models

// Employee is a row of the employee sheet.
type Employee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EmployeeIndex maps ids to employees.
type EmployeeIndex map[int]Employee

// IndexEmployees builds a lookup table keyed by id.
func IndexEmployees(employees []Employee) EmployeeIndex {
	index := make(EmployeeIndex, len(employees))
	for _, e := range employees {
		index[e.ID] = e
	}
	return index
}
