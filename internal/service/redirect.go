package service

import (
	"strings"

	"funnel-server/internal/models"
)

// DefaultRedirectLink - последний рубеж: используется, когда ни у ответа,
// ни у воронки, ни в конфигурации ссылка не задана.
const DefaultRedirectLink = "https://google.com"

// BuildRedirectLink вычисляет итоговую ссылку редиректа для завершенной воронки.
//
// Приоритет источников: ссылка выбранного ответа, затем finalRedirectLink
// воронки, затем fallback из конфигурации, затем DefaultRedirectLink.
// Трекинг-параметры воронки дописываются к любому результату ровно один раз:
// через '?', если в базовой ссылке еще нет query-строки, иначе через '&'.
func BuildRedirectLink(answer *models.Answer, data *models.FunnelData, fallback string) string {
	base := ""
	if answer != nil {
		base = strings.TrimSpace(answer.AffiliateLink)
	}
	if base == "" {
		base = strings.TrimSpace(data.FinalRedirectLink)
	}
	if base == "" {
		base = strings.TrimSpace(fallback)
	}
	if base == "" {
		base = DefaultRedirectLink
	}

	tracking := strings.TrimSpace(data.Tracking)
	if tracking == "" {
		return base
	}
	// Сырые трекинг-параметры вида "utm_source=x&utm_campaign=y"
	tracking = strings.TrimPrefix(tracking, "?")
	tracking = strings.TrimPrefix(tracking, "&")
	if tracking == "" {
		return base
	}

	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	return base + separator + tracking
}
