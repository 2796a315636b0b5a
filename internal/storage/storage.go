package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")

	ErrSectionNotFound      = errors.New("section not found")
	ErrSectionInUse         = errors.New("section is referenced by content")
	ErrSectionCycle         = errors.New("section parent chain forms a cycle")
	ErrNewsNotFound         = errors.New("news not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
