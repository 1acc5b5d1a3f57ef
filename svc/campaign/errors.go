package campaign

import "errors"

var (
	ErrNoRecipients = errors.New("campaign: no recipients selected")
	ErrNoTemplate   = errors.New("campaign: no template selected")
)
