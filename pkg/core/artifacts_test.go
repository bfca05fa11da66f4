package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewScreenshotAttachment(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47} // PNG header
	attachment := NewScreenshotAttachment("assets/scenario-001/step-02.png", data)

	assert.Equal(t, AttachmentScreenshot, attachment.Name)
	assert.Equal(t, ContentTypePNG, attachment.ContentType)
	assert.Equal(t, "assets/scenario-001/step-02.png", attachment.Path)
	assert.Len(t, attachment.Body, 4)
}

func TestArtifactConfig_ShouldCapture(t *testing.T) {
	cfg := DefaultArtifactConfig()

	assert.True(t, cfg.ShouldCapture(StatusFailed))
	assert.True(t, cfg.ShouldCapture(StatusErrored))
	assert.False(t, cfg.ShouldCapture(StatusPassed))
	assert.False(t, cfg.ShouldCapture(StatusSkipped))

	cfg.CaptureOnSuccess = true
	assert.True(t, cfg.ShouldCapture(StatusPassed))

	cfg.Screenshot = false
	assert.False(t, cfg.ShouldCapture(StatusFailed))
}
