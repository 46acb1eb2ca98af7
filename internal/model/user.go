package model

import "slices"

// User представляет аутентифицированного пользователя платформы.
// Поля выводятся из claims ID-токена и атрибутов провайдера идентификации.
type User struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Groups    []string
	IsAdmin   bool
}

// InGroup сообщает, состоит ли пользователь в указанной группе.
func (u *User) InGroup(group string) bool {
	return slices.Contains(u.Groups, group)
}

// FullName возвращает имя и фамилию пользователя одной строкой.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
