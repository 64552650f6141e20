/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package authn

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/identity-metadirectory-service/internal/system/config"
	errors2 "github.com/wso2/identity-metadirectory-service/internal/system/errors"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
)

// ValidateRequest checks the Authorization: Bearer token of an API
// request against the configured signing secret and audience, returning
// the token claims on success.
func ValidateRequest(r *http.Request) (jwt.MapClaims, error) {

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, unauthorizedError("Missing bearer token.")
	}
	return ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
}

// ValidateToken verifies a JWT's signature, expiry and audience.
func ValidateToken(tokenString string) (jwt.MapClaims, error) {

	logger := log.GetLogger()
	cfg := config.GetMDSRuntime().Config.Auth

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired())
	if err != nil {
		logger.Debug("Bearer token validation failed", log.Error(err))
		return nil, unauthorizedError("Invalid bearer token.")
	}
	return claims, nil
}

// GetSubjectFromRequest extracts the token subject for audit logging,
// or empty when the request carries no valid token.
func GetSubjectFromRequest(r *http.Request) string {

	claims, err := ValidateRequest(r)
	if err != nil {
		return ""
	}
	subject, _ := claims.GetSubject()
	return subject
}

func unauthorizedError(description string) error {

	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.UNAUTHORIZED_REQUEST.Code,
		Message:     errors2.UNAUTHORIZED_REQUEST.Message,
		Description: description,
	}, http.StatusUnauthorized)
}
