package common

import "github.com/google/uuid"

// UUID is a string-typed identifier so domain structs stay driver-agnostic.
type UUID string

func NewUUID() UUID {
	return UUID(uuid.NewString())
}

func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", NewError(CodeValidation, "invalid id", err)
	}
	return UUID(parsed.String()), nil
}

func (u UUID) String() string {
	return string(u)
}
