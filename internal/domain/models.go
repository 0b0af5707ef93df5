package domain

// Models 需要自动迁移的全部表
func Models() []any {
	return []any{
		&User{}, &Profile{},
		&Category{}, &Location{}, &CategoryLink{}, &LocationLink{},
		&Ad{}, &Note{}, &Favorite{},
	}
}
