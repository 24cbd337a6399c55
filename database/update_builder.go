package database

import (
	"fmt"
	"strings"
)

// UpdateBuilder assembles a SET clause from an explicit set of
// optional field updates, with every value bound as a parameter. The
// uploaded_at refresh is always appended, whether or not any field was
// supplied.
type UpdateBuilder struct {
	assignments []string
	args        []interface{}
	argCount    int
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{
		assignments: []string{},
		args:        []interface{}{},
		argCount:    1,
	}
}

func (ub *UpdateBuilder) Set(column string, value interface{}) {
	ub.assignments = append(ub.assignments, fmt.Sprintf("%s = $%d", column, ub.argCount))
	ub.args = append(ub.args, value)
	ub.argCount++
}

func (ub *UpdateBuilder) SetClause() string {
	assignments := append(ub.assignments, "uploaded_at = NOW()")
	return "SET " + strings.Join(assignments, ", ")
}

func (ub *UpdateBuilder) Args() []interface{} {
	return ub.args
}

func (ub *UpdateBuilder) NextArgNum() int {
	return ub.argCount
}
