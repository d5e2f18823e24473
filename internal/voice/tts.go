// Package voice turns message text into spoken audio.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultURL is the Google Translate speech endpoint.
const DefaultURL = "https://translate.google.com/translate_tts"

// maxChunk is the longest text the endpoint accepts per request.
const maxChunk = 200

// RenderError reports a failed synthesis. Callers fall back to text.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "voice render: " + e.Err.Error() }

func (e *RenderError) Unwrap() error { return e.Err }

var errEmptyText = errors.New("empty text")

// Renderer synthesizes MP3 speech over HTTP.
type Renderer struct {
	baseURL string
	lang    string
	client  *http.Client
}

func NewRenderer(baseURL, lang string) *Renderer {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if lang == "" {
		lang = "en"
	}
	return &Renderer{
		baseURL: baseURL,
		lang:    lang,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// Render returns MP3 audio for text. Long text is synthesized in chunks and
// the MP3 segments are concatenated. Any failure is a *RenderError.
func (r *Renderer) Render(ctx context.Context, text string) ([]byte, error) {
	chunks := Split(text, maxChunk)
	if len(chunks) == 0 {
		return nil, &RenderError{Err: errEmptyText}
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := r.renderChunk(ctx, chunk, i, len(chunks), &audio); err != nil {
			return nil, &RenderError{Err: fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)}
		}
	}
	return audio.Bytes(), nil
}

func (r *Renderer) renderChunk(ctx context.Context, chunk string, idx, total int, dst io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", r.lang)
	q.Set("q", chunk)
	q.Set("idx", fmt.Sprint(idx))
	q.Set("total", fmt.Sprint(total))
	q.Set("textlen", fmt.Sprint(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts returned status %d: %s", resp.StatusCode, string(body))
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("tts returned no audio")
	}
	return nil
}

// Split breaks text into pieces of at most limit runes, preferring
// paragraph, sentence and word boundaries. Blank pieces are dropped.
func Split(text string, limit int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		out = append(out, splitWords(para, limit)...)
	}
	return out
}

func splitWords(s string, limit int) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, w := range strings.Fields(s) {
		for utf8.RuneCountInString(w) > limit {
			flush()
			rs := []rune(w)
			out = append(out, string(rs[:limit]))
			w = string(rs[limit:])
		}
		switch {
		case cur.Len() == 0:
			cur.WriteString(w)
		case utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(w) <= limit:
			cur.WriteByte(' ')
			cur.WriteString(w)
		default:
			flush()
			cur.WriteString(w)
		}
		if strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?") {
			flush()
		}
	}
	flush()
	return out
}
