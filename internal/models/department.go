package models

// Department is a term-setup lookup row.
type Department struct {
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Professor is a term-setup lookup row.
type Professor struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	DepartmentCode string `db:"department_code" json:"department_code"`
}
