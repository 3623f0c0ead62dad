// File: internal/downloader/filename_test.go
package downloader_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ehc-io/xmedia-downloader/internal/downloader"
)

func TestFilenameFormat(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC)
	name := downloader.Filename(ts, "SomeUser", "12345", 0, "jpg")
	assert.Equal(t, "20240315_093005_someuser_12345_0.jpg", name)
}

func TestFilenameSanitizesComponents(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	name := downloader.Filename(ts, "Some User! (fan acct)", "98765", 2, "mp4")
	assert.Equal(t, "20240102_030405_some_user_fan_acct_98765_2.mp4", name)
}

func TestFilenameEmptyHandle(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	name := downloader.Filename(ts, "", "1", 0, "png")
	assert.Equal(t, "20240102_030405_unknown_1_0.png", name)
}

func TestFilenameZeroTimestampUsesNow(t *testing.T) {
	name := downloader.Filename(time.Time{}, "u", "1", 0, "jpg")
	// Can't assert the exact time, but the shape and prefix year must hold.
	assert.Regexp(t, `^\d{8}_\d{6}_u_1_0\.jpg$`, name)
	assert.NotContains(t, name, "00010101")
}
