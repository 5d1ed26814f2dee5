package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxRenderedReplies bounds the rendered-output memo. It is dropped whole
// when full; a long chat just re-renders its history once.
const maxRenderedReplies = 512

// replyKey identifies one rendered reply
type replyKey struct {
	opts    Options
	content string
}

// rendererCache hands out glamour renderers and remembers what they produced.
// Transcript messages never change, so the TUI redraw after every state change
// (and every pending animation frame) only renders messages it has not seen.
// A TermRenderer must not run two Render calls at once, so renderers are
// checked out of a per-Options pool instead of being shared.
type rendererCache struct {
	mu       sync.Mutex
	pools    map[Options]*sync.Pool
	rendered map[replyKey]string
}

var replies = newRendererCache()

func newRendererCache() *rendererCache {
	return &rendererCache{
		pools:    make(map[Options]*sync.Pool),
		rendered: make(map[replyKey]string),
	}
}

func (c *rendererCache) pool(opts Options) *sync.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pools[opts]
	if !ok {
		p = &sync.Pool{
			New: func() any {
				r, err := newRenderer(opts)
				if err != nil {
					return nil
				}
				return r
			},
		}
		c.pools[opts] = p
	}
	return p
}

// checkout returns a renderer for opts. A renderer that cannot be built is
// built again here so the caller sees the error.
func (c *rendererCache) checkout(opts Options) (*glamour.TermRenderer, error) {
	if r, ok := c.pool(opts).Get().(*glamour.TermRenderer); ok && r != nil {
		return r, nil
	}
	return newRenderer(opts)
}

func (c *rendererCache) checkin(opts Options, r *glamour.TermRenderer) {
	if r != nil {
		c.pool(opts).Put(r)
	}
}

// render returns the memoized output for content, rendering it on a miss
func (c *rendererCache) render(content string, opts Options) (string, error) {
	key := replyKey{opts: opts, content: content}

	c.mu.Lock()
	out, ok := c.rendered[key]
	c.mu.Unlock()
	if ok {
		return out, nil
	}

	r, err := c.checkout(opts)
	if err != nil {
		return "", err
	}
	out, err = r.Render(content)
	c.checkin(opts, r)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if len(c.rendered) >= maxRenderedReplies {
		c.rendered = make(map[replyKey]string)
	}
	c.rendered[key] = out
	c.mu.Unlock()
	return out, nil
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ClearCache drops every pooled renderer and memoized reply
func ClearCache() {
	replies.mu.Lock()
	replies.pools = make(map[Options]*sync.Pool)
	replies.rendered = make(map[replyKey]string)
	replies.mu.Unlock()
}

// CacheSize returns the number of distinct option sets with a renderer pool
func CacheSize() int {
	replies.mu.Lock()
	defer replies.mu.Unlock()
	return len(replies.pools)
}
