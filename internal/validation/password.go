package validation

import "unicode"

// ValidatePassword проверяет надёжность пароля при регистрации.
// Пароль должен быть не короче 8 символов и содержать заглавную букву,
// строчную букву и цифру. Спецсимволы допускаются, но не требуются.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return Errorf("пароль должен быть не менее 8 символов")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsNumber(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return Errorf("пароль должен содержать хотя бы одну заглавную букву")
	}
	if !hasLower {
		return Errorf("пароль должен содержать хотя бы одну строчную букву")
	}
	if !hasDigit {
		return Errorf("пароль должен содержать хотя бы одну цифру")
	}

	return nil
}
