package models

import (
	"fmt"
	"strings"
)

type User struct {
	ID          int64
	Name        string
	DisplayName string
}

func (u *User) Label() string {
	var parts []string
	if u.DisplayName != "" {
		parts = append(parts, u.DisplayName)
	}
	if u.Name != "" && u.Name != u.DisplayName {
		parts = append(parts, fmt.Sprintf("@%s", u.Name))
	}
	parts = append(parts, fmt.Sprintf("[%d]", u.ID))
	return strings.Join(parts, " ")
}
