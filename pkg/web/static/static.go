// Package static serves the bundled HTML pages.
package static

import (
	"context"
	"embed"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

//go:embed public/*.html
var public embed.FS

const htmlContentType = "text/html; charset=utf-8"

// Page returns a handler writing public/<name>. It panics at registration time
// if the page is not bundled.
func Page(name string) app.HandlerFunc {
	content, err := public.ReadFile("public/" + name)
	if err != nil {
		panic(fmt.Sprintf("static page %s missing: %v", name, err))
	}
	return func(ctx context.Context, c *app.RequestContext) {
		c.Data(consts.StatusOK, htmlContentType, content)
	}
}
