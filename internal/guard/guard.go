// Package guard решает, можно ли показать запрошенную страницу при текущей сессии.
//
// Проверка на клиенте - удобство для пользователя, а не граница безопасности:
// бэкенд обязан сам проверять права на каждом привилегированном запросе.
package guard

import (
	"net/url"
	"path"
	"strings"

	"shopoholic/internal/session"
)

// Requirement - требование страницы к сессии.
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	// Admin - вход выполнен и роль admin.
	Admin
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "authenticated+admin"
	default:
		return "unknown"
	}
}

// Outcome - итог проверки. На одну навигацию всегда ровно один.
type Outcome int

const (
	// Pending - сессия еще не загружена; показываем нейтральную заглушку, а не редирект.
	Pending Outcome = iota
	Allowed
	RedirectToLogin
	RedirectToDefault
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToDefault:
		return "redirect_to_default"
	default:
		return "unknown"
	}
}

// Decision - результат проверки. Location задан для редиректов,
// ReturnPath - для RedirectToLogin.
type Decision struct {
	Outcome    Outcome `json:"-"`
	Location   string  `json:"location,omitempty"`
	ReturnPath string  `json:"return_path,omitempty"`
}

// Policy задает, куда отправлять пользователя.
type Policy struct {
	LoginPath   string
	DefaultPath string
	// ReturnParam - параметр адреса входа, в котором лежит путь возврата.
	ReturnParam string
	// NoReturn - страницы, на которые после входа не возвращаемся.
	NoReturn []string
}

func DefaultPolicy() Policy {
	return Policy{
		LoginPath:   "/login",
		DefaultPath: "/",
		ReturnParam: "from",
		NoReturn:    []string{"/cart"},
	}
}

// Evaluate - чистая функция решения для одной навигации.
func (p Policy) Evaluate(ready bool, snap session.Snapshot, req Requirement, requested string) Decision {
	switch {
	case req == Public:
		return Decision{Outcome: Allowed}
	case !ready:
		return Decision{Outcome: Pending}
	case !snap.IsAuthenticated:
		return Decision{
			Outcome:    RedirectToLogin,
			Location:   p.LoginLocation(requested),
			ReturnPath: requested,
		}
	case req == Admin && !snap.IsAdmin:
		return Decision{Outcome: RedirectToDefault, Location: p.DefaultPath}
	default:
		return Decision{Outcome: Allowed}
	}
}

// LoginLocation - адрес страницы входа с запомненным путем возврата.
func (p Policy) LoginLocation(requested string) string {
	if requested == "" {
		return p.LoginPath
	}
	return p.LoginPath + "?" + url.Values{p.ReturnParam: {requested}}.Encode()
}

// ReturnTarget - куда вести пользователя после успешного входа.
// Чужие адреса, сама страница входа и страницы из NoReturn (вместе с вложенными)
// ведут на DefaultPath.
func (p Policy) ReturnTarget(stored string) string {
	if !isLocal(stored) {
		return p.DefaultPath
	}

	u, err := url.Parse(stored)
	if err != nil || u.IsAbs() || u.Host != "" {
		return p.DefaultPath
	}

	clean := cleanPath(u.Path)
	if clean == p.LoginPath {
		return p.DefaultPath
	}
	for _, np := range p.NoReturn {
		if clean == np || strings.HasPrefix(clean, np+"/") {
			return p.DefaultPath
		}
	}
	return stored
}

func isLocal(s string) bool {
	if !strings.HasPrefix(s, "/") {
		return false
	}
	return !strings.HasPrefix(s, "//") && !strings.HasPrefix(s, `/\`)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}
