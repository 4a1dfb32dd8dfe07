package main

import "errors"

// Directory and marker names shared by several commands.
const (
	fbArticleGlob   = "article_fb_*.html"
	anyArticleGlob  = "article_*.html"
	removedEmptyDir = "removed_empty_fb"
	fbMediaDir      = "facebook_media"
	markerStart     = "<!-- FB-IMPORT-START -->"
	markerEnd       = "<!-- FB-IMPORT-END -->"
)

var (
	errConfigInvalid   = errors.New("invalid config")
	errNoContainer     = errors.New("content container not found")
	errSchemaTooNew    = errors.New("database schema is newer than this tool")
	errMarkerNotFound  = errors.New("insertion point not found")
	errBackupDBMissing = errors.New("backup database not found")
	errNoInput         = errors.New("input not found")
	errNoSections      = errors.New("no post sections found")
	errUnknownCommand  = errors.New("unknown command")
	errUnknownStrategy = errors.New("unknown strategy")
	errUnknownFormat   = errors.New("unknown export format")
	errAlreadyRefined  = errors.New("already refined")
	errPrivateAddress  = errors.New("blocked connection to private address")
	errImageNotFound   = errors.New("image not found locally and not http")
)
