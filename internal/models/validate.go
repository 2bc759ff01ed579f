package models

import (
	"strings"

	"shopoholic/internal/domain"
)

// FormErrors - ошибки по полям формы, пустая карта значит форма корректна
type FormErrors map[string]string

func (e FormErrors) OK() bool { return len(e) == 0 }

// ValidateLogin - проверка формы входа
func ValidateLogin(email, password string) FormErrors {
	errs := FormErrors{}
	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "Пожалуйста, введите email"
	case !domain.IsValidEmail(email):
		errs["email"] = "Неверный формат email"
	}
	if password == "" {
		errs["password"] = "Пожалуйста, введите пароль"
	}
	return errs
}

// Validate - проверка формы оформления заказа; адрес нужен только для курьера
func (in OrderInput) Validate() FormErrors {
	errs := FormErrors{}
	c := in.Customer

	if strings.TrimSpace(c.FullName) == "" {
		errs["full_name"] = "Пожалуйста, укажите ФИО"
	}

	switch {
	case strings.TrimSpace(c.Phone) == "":
		errs["phone"] = "Пожалуйста, укажите номер телефона"
	case !domain.IsValidPhone(c.Phone):
		errs["phone"] = "Неверный формат номера телефона"
	}

	switch {
	case strings.TrimSpace(c.Email) == "":
		errs["email"] = "Пожалуйста, укажите email"
	case !domain.IsValidEmail(c.Email):
		errs["email"] = "Неверный формат email"
	}

	if in.DeliveryMethod != DeliveryCourier && in.DeliveryMethod != DeliveryPickup {
		errs["delivery_method"] = "Неизвестный способ доставки"
	}
	if in.PaymentMethod != PaymentCard && in.PaymentMethod != PaymentCash {
		errs["payment_method"] = "Неизвестный способ оплаты"
	}

	if in.DeliveryMethod == DeliveryCourier {
		if strings.TrimSpace(c.Address) == "" {
			errs["address"] = "Пожалуйста, укажите адрес доставки"
		}
		if strings.TrimSpace(c.City) == "" {
			errs["city"] = "Пожалуйста, укажите город"
		}
		if strings.TrimSpace(c.PostalCode) == "" {
			errs["postal_code"] = "Пожалуйста, укажите почтовый индекс"
		}
	}

	return errs
}

// Validate - проверка формы товара
func (in ProductInput) Validate() FormErrors {
	errs := FormErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Название товара обязательно"
	}
	if in.Price <= 0 {
		errs["price"] = "Цена должна быть положительным числом"
	}
	if in.Stock < 0 {
		errs["stock"] = "Количество должно быть неотрицательным числом"
	}
	return errs
}

// Validate - проверка формы пользователя; при создании пароль обязателен
func (in UserInput) Validate(isNew bool) FormErrors {
	errs := FormErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Имя пользователя обязательно"
	}

	switch {
	case strings.TrimSpace(in.Email) == "":
		errs["email"] = "Email обязателен"
	case !domain.IsValidEmail(in.Email):
		errs["email"] = "Неверный формат email"
	}

	switch {
	case isNew && in.Password == "":
		errs["password"] = "Пароль обязателен для нового пользователя"
	case in.Password != "" && len([]rune(in.Password)) < 6:
		errs["password"] = "Пароль должен содержать не менее 6 символов"
	}

	if in.Phone != "" && !domain.IsValidPhone(in.Phone) {
		errs["phone"] = "Неверный формат номера телефона"
	}

	if !in.Role.Valid() {
		errs["role"] = "Неизвестная роль"
	}

	return errs
}
