// Package verify orquesta el envío de códigos de verificación de redes
// sociales: normaliza la entrada, resuelve la identidad, provisiona el código
// y dispara la notificación.
package verify

import "errors"

// Policy selects how the dispatcher provisions the code. It is fixed per
// deployment; requests cannot choose it.
type Policy string

const (
	// PolicyGenerate mints a fresh random code on every call and persists it.
	PolicyGenerate Policy = "generate"
	// PolicyReuse re-sends the code already stored on the profile document.
	PolicyReuse Policy = "reuse"
)

// Errores de dominio que el handler HTTP traduce a estados y mensajes fijos.
var (
	// ErrUserDataRequired: the normalized record has no user id.
	ErrUserDataRequired = errors.New("verify: user data is required")
	// ErrInvalidPayload: the payload could not be parsed at all.
	ErrInvalidPayload = errors.New("verify: invalid request format")
	// ErrNoStoredCode: reuse policy found an empty code field.
	ErrNoStoredCode = errors.New("verify: no verification code found")
)
