package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	tagNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// NormalizeTagName 标签名统一小写并去除首尾空白
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func ValidateTagName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("%w: tag names must be at least 2 characters long", ErrValidation)
	}
	if len(name) > 50 {
		return fmt.Errorf("%w: tag names cannot exceed 50 characters", ErrValidation)
	}
	if !tagNamePattern.MatchString(name) {
		return fmt.Errorf("%w: tag names can only contain letters, numbers, hyphens, and underscores", ErrValidation)
	}
	return nil
}

func ValidateHexColor(color string) error {
	if !hexColorPattern.MatchString(color) {
		return fmt.Errorf("%w: color must be a valid hex color code", ErrValidation)
	}
	return nil
}

func ValidateQuestionTitle(title string) error {
	if len(title) < 10 {
		return fmt.Errorf("%w: question titles must be at least 10 characters long", ErrValidation)
	}
	if len(title) > 300 {
		return fmt.Errorf("%w: question titles cannot exceed 300 characters", ErrValidation)
	}
	return nil
}

// ValidateContent 问题与答案正文的长度约束
func ValidateContent(content string) error {
	if len(content) < 20 {
		return fmt.Errorf("%w: content must be at least 20 characters long", ErrValidation)
	}
	if len(content) > 10000 {
		return fmt.Errorf("%w: content cannot exceed 10,000 characters", ErrValidation)
	}
	return nil
}
