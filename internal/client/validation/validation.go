// Package validation checks form input before it is sent to the backend.
package validation

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/common"
)

const (
	MinNameLen     = 2
	MinPasswordLen = 8
	MinCaptionLen  = 5
	MaxCaptionLen  = 2200
	MinLocationLen = 1
	MaxLocationLen = 1000
)

// Errors maps a form field to the message shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == common.ErrValidation
}

func (e Errors) add(field, msg string) {
	if msg == "" {
		return
	}
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// length counts characters after NFC normalization, so a composed and a
// decomposed "ñ" both count as one.
func length(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

func hasSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

func checkName(s, minMsg, blankMsg, spaceMsg string) string {
	switch {
	case length(s) < MinNameLen:
		return minMsg
	case length(strings.TrimSpace(s)) < MinNameLen:
		return blankMsg
	case hasSpace(s):
		return spaceMsg
	}
	return ""
}

func name(s string) string {
	return checkName(s,
		"El nombre debe tener al menos 2 caracteres.",
		"El nombre no puede estar vacío ni contener solo espacios.",
		"El nombre no debe contener espacios.")
}

func username(s string) string {
	return checkName(s,
		"El nombre de usuario debe tener al menos 2 caracteres.",
		"El nombre de usuario no puede estar vacío ni contener solo espacios.",
		"El nombre de usuario no debe contener espacios.")
}

func password(s string) string {
	switch {
	case length(s) < MinPasswordLen:
		return "La contraseña debe tener al menos 8 caracteres."
	case length(strings.TrimSpace(s)) < MinPasswordLen:
		return "La contraseña no puede estar vacía ni contener solo espacios."
	case hasSpace(s):
		return "La contraseña no debe contener espacios."
	}
	return ""
}

func email(s string) string {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return "Invalid email"
	}
	return ""
}

func SignUp(u models.NewUser) error {
	errs := Errors{}
	errs.add("name", name(u.Name))
	errs.add("username", username(u.Username))
	errs.add("email", email(u.Email))
	errs.add("password", password(u.Password))
	return errs.err()
}

func SignIn(c models.Credentials) error {
	errs := Errors{}
	errs.add("email", email(c.Email))
	errs.add("password", password(c.Password))
	return errs.err()
}

func Profile(p models.ProfileUpdate) error {
	errs := Errors{}
	errs.add("name", name(p.Name))
	errs.add("username", username(p.Username))
	errs.add("email", email(p.Email))
	return errs.err()
}

func Post(p models.NewPost) error {
	errs := Errors{}
	switch n := length(p.Caption); {
	case n < MinCaptionLen:
		errs.add("caption", "Minimum 5 characters.")
	case n > MaxCaptionLen:
		errs.add("caption", "Maximum 2,200 characters")
	}
	switch n := length(p.Location); {
	case n < MinLocationLen:
		errs.add("location", "This field is required")
	case n > MaxLocationLen:
		errs.add("location", "Maximum 1000 characters.")
	}
	return errs.err()
}
