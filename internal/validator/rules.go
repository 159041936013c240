package validator

import (
	"log"
	"strings"

	"portal_backend/internal/algorithms"
	"portal_backend/internal/auth"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные функции валидации
func registerCustomRules(v *validator.Validate, allowedDomains []string) {

	// Если правило не удалось зарегистрировать, приложение не должно запускаться
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'allowed_email_domain': email оканчивается на один из разрешенных доменов
	mustRegister("allowed_email_domain", func(fl validator.FieldLevel) bool {
		value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		if value == "" {
			return true // пустое ловит 'required'
		}
		for _, d := range allowedDomains {
			if strings.HasSuffix(value, d) {
				return true
			}
		}
		return false
	})

	// 'reset_code': ровно 6 цифр
	mustRegister("reset_code", func(fl validator.FieldLevel) bool {
		return auth.IsResetCodeFormat(strings.TrimSpace(fl.Field().String()))
	})

	// 'site_code': строка, из которой извлекается код сайта
	mustRegister("site_code", func(fl validator.FieldLevel) bool {
		return algorithms.SiteCode(fl.Field().String()) != ""
	})

	// 'notblank': не пустая после trim
	mustRegister("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
