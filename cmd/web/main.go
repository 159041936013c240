// @title           User Portal API
// @version         1.0
// @description     Регистрация, подтверждение email, профиль, сайты и адрес доставки пользователя.
// @host            localhost:5000
// @BasePath        /

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name access_token_cookie

package main

import "portal_backend/internal/app"

func main() {
	app.Run()
}
