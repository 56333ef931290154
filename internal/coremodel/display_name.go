package coremodel

// NamedActor 可格式化显示名的参与者（User 与 UserToken）
type NamedActor interface {
	DisplayNames() (name, firstName string)
}

func (u *User) DisplayNames() (string, string)      { return u.Name, u.FirstName }
func (t *UserToken) DisplayNames() (string, string) { return t.Name, t.FirstName }

// BuildUserFullName 生成 "姓, 名" 形式的显示名；缺少姓时返回 "-"
func BuildUserFullName(actor NamedActor) string {
	if actor == nil {
		return "-"
	}
	switch a := actor.(type) {
	case *User:
		if a == nil {
			return "-"
		}
	case *UserToken:
		if a == nil {
			return "-"
		}
	}
	name, firstName := actor.DisplayNames()
	if name == "" {
		return "-"
	}
	if firstName != "" {
		return name + ", " + firstName
	}
	return name
}
