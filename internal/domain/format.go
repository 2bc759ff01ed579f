package domain

import (
	"fmt"
	"time"
)

// Валюты отображения цен
const (
	CurrencyRUB = "RUB"
	CurrencyUSD = "USD"
)

// ExchangeRate - курс рубля к доллару для витрины
const ExchangeRate = 81.8

// FormatPrice - цена в рублях или в долларах по курсу
func FormatPrice(price float64, currency string) string {
	if currency == CurrencyUSD {
		return fmt.Sprintf("$%.2f", price/ExchangeRate)
	}
	return fmt.Sprintf("%.1f руб.", price)
}

// FormatDate - дата в виде ДД.ММ.ГГГГ
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}
