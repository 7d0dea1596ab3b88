package domain

import "time"

const (
	RoleUser      = "user"
	RoleTourGuide = "tour-guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// PasswordChangeSkew back-dates passwordChangedAt so that a token issued in
// the same request cycle is never considered older than the change.
const PasswordChangeSkew = time.Second

// User models an authenticated principal.
type User struct {
	ID                   string     `json:"_id" bson:"_id,omitempty"`
	Name                 string     `json:"name" bson:"name" validate:"required"`
	Email                string     `json:"email" bson:"email" validate:"required,email"`
	Photo                string     `json:"photo,omitempty" bson:"photo,omitempty"`
	Role                 string     `json:"role" bson:"role" validate:"omitempty,oneof=user tour-guide lead-guide admin"`
	PasswordHash         string     `json:"-" bson:"password"`
	PasswordChangedAt    *time.Time `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string     `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time `json:"-" bson:"passwordResetExpires,omitempty"`
	Active               bool       `json:"-" bson:"active"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
}

// PasswordChangeTime returns the instant recorded as passwordChangedAt for a
// credential change happening at now.
func PasswordChangeTime(now time.Time) time.Time {
	return now.Add(-PasswordChangeSkew).UTC()
}

// ChangePassword replaces the stored hash and stamps passwordChangedAt.
func (u *User) ChangePassword(hash string, now time.Time) {
	changed := PasswordChangeTime(now)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changed
}

// ChangedPasswordAfter reports whether the credential was rotated after a token
// issued at issuedAt. Comparison is at second precision, the resolution of the
// token's iat claim.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
