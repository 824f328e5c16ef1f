package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinTemplateNameLength   = 1
	MaxTemplateNameLength   = 200
	MinSubjectLineLength    = 1
	MaxSubjectLineLength    = 300
	MinBodyLength           = 1
	MaxBodyLength           = 100000
	MinFullNameLength       = 2
	MaxFullNameLength       = 100
	MaxWorkspaceNameLength  = 100
	MaxContactNameLength    = 100
	MaxAccountNameLength    = 200
	MaxDealNameLength       = 200
	MaxSequenceNameLength   = 200
	MaxCollectionNameLength = 200
	MaxTagLength            = 50
	MaxTagsCount            = 25
	MaxSequenceSteps        = 30
	MaxDelayDays            = 90
	MinDealAmount           = 0.0
	MaxDealAmount           = 1000000000.0 // миллиард
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEnum проверяет принадлежность значения допустимому множеству.
func ValidateEnum(fieldName, value string, allowed map[string]struct{}) error {
	if _, ok := allowed[value]; !ok {
		return Errorf("%s имеет недопустимое значение '%s'", fieldName, value)
	}
	return nil
}

// ValidateTemplateName проверяет название шаблона.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Errorf("название шаблона обязательно")
	}
	return ValidateLength("название шаблона", strings.TrimSpace(name), MinTemplateNameLength, MaxTemplateNameLength)
}

// ValidateSubjectLine проверяет тему письма.
func ValidateSubjectLine(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return Errorf("тема письма обязательна")
	}
	return ValidateLength("тема письма", strings.TrimSpace(subject), MinSubjectLineLength, MaxSubjectLineLength)
}

// ValidateTemplateBody проверяет тело письма.
func ValidateTemplateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return Errorf("тело письма обязательно")
	}
	return ValidateLength("тело письма", body, MinBodyLength, MaxBodyLength)
}

// ValidateFullName проверяет полное имя пользователя.
func ValidateFullName(fullName string) error {
	if strings.TrimSpace(fullName) == "" {
		return Errorf("полное имя обязательно")
	}
	return ValidateLength("полное имя", strings.TrimSpace(fullName), MinFullNameLength, MaxFullNameLength)
}

// ValidateWorkspaceName проверяет название воркспейса.
func ValidateWorkspaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Errorf("название воркспейса обязательно")
	}
	return ValidateLength("название воркспейса", strings.TrimSpace(name), 1, MaxWorkspaceNameLength)
}

// ValidateTags проверяет массив тегов.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagsCount {
		return Errorf("количество тегов не может превышать %d", MaxTagsCount)
	}

	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return Errorf("тег не может быть пустым")
		}

		// Проверка длины тега
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return Errorf("тег не может быть длиннее %d символов", MaxTagLength)
		}

		// Проверка на дубликаты (без учета регистра)
		tagLower := strings.ToLower(tag)
		if seen[tagLower] {
			return Errorf("тег '%s' указан дважды", tag)
		}
		seen[tagLower] = true
	}

	return nil
}

// ValidateDealAmount проверяет сумму сделки.
func ValidateDealAmount(amount *float64) error {
	if amount != nil {
		if *amount < MinDealAmount {
			return Errorf("сумма сделки не может быть отрицательной")
		}
		if *amount > MaxDealAmount {
			return Errorf("сумма сделки не может превышать %.0f", MaxDealAmount)
		}
	}
	return nil
}

// ValidateReplyRateRange проверяет границы диапазона доли ответов.
func ValidateReplyRateRange(min, max *float64) error {
	if min != nil && (*min < 0 || *min > 1) {
		return Errorf("нижняя граница доли ответов должна быть от 0 до 1")
	}
	if max != nil && (*max < 0 || *max > 1) {
		return Errorf("верхняя граница доли ответов должна быть от 0 до 1")
	}
	if min != nil && max != nil && *min > *max {
		return Errorf("нижняя граница доли ответов не может быть больше верхней")
	}
	return nil
}

// ValidateSequenceSteps проверяет набор шагов последовательности.
// Шаги должны быть пронумерованы подряд с единицы.
func ValidateSequenceSteps(stepNumbers []int, delayDays []int) error {
	if len(stepNumbers) > MaxSequenceSteps {
		return Errorf("количество шагов не может превышать %d", MaxSequenceSteps)
	}

	seen := make(map[int]bool)
	for i, n := range stepNumbers {
		if n < 1 || n > len(stepNumbers) {
			return Errorf("номер шага %d вне диапазона 1..%d", n, len(stepNumbers))
		}
		if seen[n] {
			return Errorf("номер шага %d указан дважды", n)
		}
		seen[n] = true

		if i < len(delayDays) {
			if delayDays[i] < 0 {
				return Errorf("задержка шага не может быть отрицательной")
			}
			if delayDays[i] > MaxDelayDays {
				return Errorf("задержка шага не может превышать %d дней", MaxDelayDays)
			}
		}
	}

	return nil
}
