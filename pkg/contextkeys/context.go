package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - ключ, по которому хранится *gorm.DB в context
	DBContextKey = contextKey("db")

	// UserIDKey - ключ gin.Context для id аутентифицированного аккаунта (uint)
	UserIDKey = "userID"
)
