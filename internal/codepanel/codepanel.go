package codepanel

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/sitescope/internal/model"
)

// Notification messages for the copy action.
const (
	MessageCopied     = "Code copied to clipboard!"
	MessageCopyFailed = "Failed to copy code"
)

// MIMEType is the type of every downloaded sample.
const MIMEType = "text/plain"

// Kind is the flavour of a notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a short message shown once to the user.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Sink receives downloaded files.
type Sink interface {
	Save(ctx context.Context, file File) error
}

// File is a downloadable code sample.
type File struct {
	Name     string
	MIMEType string
	Content  string
}

// Copy writes text to the clipboard and returns the notification to show.
// Clipboard errors never propagate: they become an error notification.
func Copy(ctx context.Context, clipboard Clipboard, text string) Notification {
	if err := clipboard.WriteText(ctx, text); err != nil {
		return Notification{Kind: KindError, Message: MessageCopyFailed}
	}
	return Notification{Kind: KindSuccess, Message: MessageCopied}
}

// Download packages text as the file for codeType and hands it to sink.
// The file is named after the code type (index.html, styles.css, script.js)
// and always has MIME type text/plain.
func Download(ctx context.Context, sink Sink, codeType model.CodeType, text string) (File, error) {
	if _, err := model.ParseCodeType(string(codeType)); err != nil {
		return File{}, err
	}
	file := File{
		Name:     codeType.Filename(),
		MIMEType: MIMEType,
		Content:  text,
	}
	if err := sink.Save(ctx, file); err != nil {
		return File{}, fmt.Errorf("failed to save %s: %w", file.Name, err)
	}
	return file, nil
}

var (
	htmlFormatter = strings.NewReplacer("><", ">\n<")
	cssFormatter  = strings.NewReplacer("{", " {\n  ", "}", "\n}\n", ";", ";\n  ")
	jsFormatter   = strings.NewReplacer("{", " {\n  ", "}", "\n}\n", ";", ";\n")
)

// Format applies a naive textual layout to text.
//
//   - html: break between adjacent tags, then trim surrounding whitespace
//   - css: newline after "{" and ";" with two-space indent, "}" on its own line
//   - js: like css, without indenting after ";"
//
// It is a substitution, not a parser: braces inside strings are rewritten
// too. Unknown code types return text unchanged.
func Format(codeType model.CodeType, text string) string {
	switch codeType {
	case model.CodeHTML:
		return strings.TrimSpace(htmlFormatter.Replace(text))
	case model.CodeCSS:
		return cssFormatter.Replace(text)
	case model.CodeJS:
		return jsFormatter.Replace(text)
	default:
		return text
	}
}
