package utils

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRe = regexp.MustCompile(`^[\p{L}0-9_-]{3,20}$`)
)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// ValidatePostData checks title and content bounds for a new post.
func ValidatePostData(title, content string) (bool, string) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return false, "Title cannot be empty"
	}
	if content == "" {
		return false, "Content cannot be empty"
	}
	if utf8.RuneCountInString(title) < 3 {
		return false, "Title must contain at least 3 characters"
	}
	if utf8.RuneCountInString(title) > 120 {
		return false, "Title cannot exceed 120 characters"
	}
	if utf8.RuneCountInString(content) > 10000 {
		return false, "Content cannot exceed 10000 characters"
	}
	return true, ""
}

// ValidateCommentData checks comment or reply text bounds.
func ValidateCommentData(text string) (bool, string) {
	text = strings.TrimSpace(text)

	if text == "" {
		return false, "Comment text cannot be empty"
	}
	if utf8.RuneCountInString(text) > 1000 {
		return false, "Comment text cannot exceed 1000 characters"
	}
	return true, ""
}

// IsValidMessageType reports whether t is one of the supported message
// kinds.
func IsValidMessageType(t string) bool {
	switch t {
	case "text", "image", "file":
		return true
	}
	return false
}

// IsValidURL accepts http(s) URLs; empty is valid for optional fields.
func IsValidURL(str string) bool {
	if str == "" {
		return true
	}
	return strings.HasPrefix(str, "http://") || strings.HasPrefix(str, "https://")
}

// IsDataURL reports whether str is an inline base64 data URL.
func IsDataURL(str string) bool {
	return strings.HasPrefix(str, "data:")
}

// DecodeDataURL splits a "data:<mime>;base64,<payload>" string into its
// MIME type and raw bytes.
func DecodeDataURL(str string) (mime string, data []byte, err error) {
	if !IsDataURL(str) {
		return "", nil, errors.New("not a data URL")
	}

	rest := strings.TrimPrefix(str, "data:")
	sep := strings.Index(rest, ",")
	if sep < 0 {
		return "", nil, errors.New("malformed data URL")
	}

	meta, payload := rest[:sep], rest[sep+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, errors.New("data URL is not base64 encoded")
	}
	mime = strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.New("invalid base64 payload")
	}
	return mime, data, nil
}
