// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the transient article types exchanged with the admin client.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// Capability names an action a role may perform.
type Capability string

const (
	// CapEdit allows generating, regenerating images and saving articles.
	CapEdit Capability = "edit"
	// CapManage allows changing site-wide settings such as the API credential.
	CapManage Capability = "manage"
)

// User represents a CMS user with authentication and 2FA fields.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Needs2FASetup returns true if the user has not completed 2FA enrollment.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}

// Can reports whether the role grants the capability. Unknown roles get nothing.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapEdit:
		return r == RoleAdmin || r == RoleEditor || r == RoleAuthor
	case CapManage:
		return r == RoleAdmin
	}
	return false
}
