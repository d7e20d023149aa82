//go:build !windows

package autostart

import "errors"

var errUnsupported = errors.New("autostart: registry is only available on windows")

func Set(enabled bool) error { return errUnsupported }

func Enabled() (bool, error) { return false, errUnsupported }
