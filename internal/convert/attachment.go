package convert

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/siftertools/sift2bb/internal/model"
	"github.com/siftertools/sift2bb/internal/sifter"
)

// attachmentDir is the bundle-relative directory holding materialized
// attachment files, matching the path field on every attachment record.
const attachmentDir = "attachments"

// Download pairs an attachment record with the source URL its payload
// must be fetched from. The record is final except that it must only enter
// the bundle once the payload has been stored.
type Download struct {
	URL    string
	Record *model.Attachment
}

var unsafeFilenameChars = regexp.MustCompile(`[^0-9A-Za-z_.\-]`)

// Attachments enumerates every attachment under every comment of the
// issue, description comment included, and returns one pending download
// per attachment in document order.
func (c *Converter) Attachments(n *sifter.Node, issueID int) ([]*Download, error) {
	var out []*Download
	for _, cn := range n.Children("comment") {
		for _, an := range cn.Children("attachment") {
			name, err := c.filename(an)
			if err != nil {
				return nil, fmt.Errorf("issue %d: %w", issueID, err)
			}
			url, ok := an.Text("url")
			if !ok {
				return nil, fmt.Errorf("issue %d: attachment %s has no source url", issueID, name)
			}
			out = append(out, &Download{
				URL: url,
				Record: &model.Attachment{
					Filename: name,
					IssueID:  issueID,
					Path:     path.Join(attachmentDir, name),
					// The uploader is the comment's author, not the
					// issue's reporter.
					User: c.memberPtr(cn, "commenter-id"),
				},
			})
		}
	}
	return out, nil
}

// filename derives the collision-free stored name for an attachment node,
// memoized per node so every read returns the identical value.
//
// The raw name is stripped to [0-9A-Za-z_.-]. The literal placeholder
// "undefined" has no usable extension, so the extension comes from the
// declared content type instead. A random hex token between base and
// extension makes the name unique across the run; collisions are
// negligible by construction, not deduplicated by retry.
func (c *Converter) filename(an *sifter.Node) (string, error) {
	if name, ok := c.filenames[an]; ok {
		return name, nil
	}

	raw, ok := an.Text("filename")
	if !ok {
		return "", fmt.Errorf("attachment has no filename")
	}
	sanitized := unsafeFilenameChars.ReplaceAllString(raw, "")

	var base, ext string
	if sanitized == "undefined" {
		contentType, ok := an.Text("content-type")
		if !ok {
			return "", fmt.Errorf("attachment %q has no content type", raw)
		}
		base = sanitized
		ext = contentType[strings.LastIndex(contentType, "/")+1:]
	} else if i := strings.LastIndex(sanitized, "."); i >= 0 {
		base, ext = sanitized[:i], sanitized[i+1:]
	} else {
		// No dot: the whole name becomes the extension.
		base, ext = "", sanitized
	}

	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generating filename token: %w", err)
	}

	name := fmt.Sprintf("%s_%s.%s", base, hex.EncodeToString(token), ext)
	c.filenames[an] = name
	return name, nil
}
