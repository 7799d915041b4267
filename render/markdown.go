package render

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

// mdConverter is shared across calls; the converter is stateless per
// conversion and safe for concurrent use.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Markdown exports the page body as CommonMark. The markup fed to the
// converter comes from Body, so the export inherits its determinism and
// escaping guarantees.
func Markdown(m *pagemodel.PageModel) (string, error) {
	return mdConverter.ConvertString(Body(m))
}
