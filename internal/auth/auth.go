// Copyright 2026 The TenantForms Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth issues and verifies the bearer tokens of the admin API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tenantforms/tenantforms/internal/identity"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWeakSecret   = errors.New("token secret must be at least 32 bytes")
)

// Claims is the payload of an access token.
type Claims struct {
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Tenant string `json:"tenant,omitempty"`
	jwt.RegisteredClaims
}

// Service signs HS256 access tokens carrying the caller's identity.
type Service struct {
	issuer string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service. The secret must be at least 32 bytes.
func NewService(issuer, secret string, ttl time.Duration) (*Service, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		issuer: issuer,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for id and returns it with its expiry.
func (s *Service) Issue(id identity.Identity) (string, time.Time, error) {
	if id.IsAnonymous() {
		return "", time.Time{}, fmt.Errorf("cannot issue a token for an anonymous identity")
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email:  id.Email,
		Role:   string(id.Role),
		Tenant: id.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses a token and returns the identity it carries.
func (s *Service) Verify(token string) (identity.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, err := identity.ParseRole(claims.Role)
	if err != nil || role == identity.RoleNone || claims.Subject == "" {
		return identity.Identity{}, ErrInvalidToken
	}

	return identity.Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     role,
		TenantID: claims.Tenant,
	}, nil
}
