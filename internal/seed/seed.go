// Package seed imports user records in bulk through registration.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"kali/internal/auth"
	apperrors "kali/internal/errors"
	"kali/internal/logger"
	"kali/internal/service"
)

// UserData is one record of a seed document.
type UserData struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// Result counts the outcome of an import.
type Result struct {
	Created int
	Skipped int
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load reads a JSON array of users from a file path or an http(s) URL.
func Load(ctx context.Context, source string) ([]UserData, error) {
	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(ctx, source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var users []UserData
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return users, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Import registers every user. Records with an email that is already
// registered, lacking an email or password, or with a password longer than
// auth.MaxPasswordBytes are skipped.
func Import(ctx context.Context, authService service.AuthService, users []UserData) (Result, error) {
	var res Result
	for _, u := range users {
		if u.Email == "" || u.Password == "" {
			logger.WarnContext(ctx, "skipping seed record without email or password", "username", u.Username)
			res.Skipped++
			continue
		}
		if len(u.Password) > auth.MaxPasswordBytes {
			logger.WarnContext(ctx, "skipping seed record with overlong password", "username", u.Username)
			res.Skipped++
			continue
		}

		_, err := authService.Register(ctx, service.RegisterInput{
			Username:    u.Username,
			Email:       u.Email,
			Password:    u.Password,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			PhoneNumber: u.PhoneNumber,
		})
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, apperrors.ErrDuplicateEmail), errors.Is(err, apperrors.ErrInvalidPassword):
			res.Skipped++
		default:
			return res, fmt.Errorf("error registering %s: %w", u.Email, err)
		}
	}
	return res, nil
}
