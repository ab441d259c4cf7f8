package infopage

// StyleAnchor marks the injection point in the stock page: the closing tag
// of its style block. The themed handler splices ThemeCSS in front of the
// first occurrence, so the anchor survives and the page stays well-formed.
const StyleAnchor = "</style>"

// ThemeCSS is the phpToro theme injected into the stock page. It opens with
// its own "</style>\n<style>" so the original block is closed first and the
// theme rules land in a fresh block that overrides the stock styles.
const ThemeCSS = "</style>\n<style>\n" +
	":root { --toro: #a20009; --toro-light: #f5d0d2; --toro-dark: #6b0006; }\n" +
	"body { background-color: #fff; color: #222; font-family: sans-serif; }\n" +
	"pre { margin: 0; font-family: monospace; }\n" +
	"a { color: var(--toro); }\n" +
	"a:hover { text-decoration: none; }\n" +
	"table { border-collapse: collapse; border: 0; width: 934px; box-shadow: 1px 2px 3px rgba(0,0,0,.2); }\n" +
	".center { text-align: center; }\n" +
	".center table { margin: 1em auto; text-align: left; }\n" +
	".center th { text-align: center !important; }\n" +
	"td, th { border: 1px solid #999; font-size: 75%; vertical-align: baseline; padding: 4px 5px; }\n" +
	"th { position: sticky; top: 0; background: inherit; }\n" +
	"h1 { font-size: 150%; color: var(--toro); }\n" +
	"h2 { font-size: 125%; color: var(--toro); }\n" +
	"h2 > a { text-decoration: none; }\n" +
	"h2 > a:hover { text-decoration: underline; }\n" +
	".p { text-align: left; }\n" +
	".e { background-color: var(--toro-light); width: 300px; font-weight: bold; }\n" +
	".h { background-color: var(--toro); color: #fff; font-weight: bold; }\n" +
	".v { background-color: #f0f0f0; max-width: 300px; overflow-x: auto; word-wrap: break-word; }\n" +
	".v i { color: #999; }\n" +
	"img { float: right; border: 0; }\n" +
	"hr { width: 934px; background-color: #ddd; border: 0; height: 1px; }\n" +
	"@media (prefers-color-scheme: dark) {\n" +
	"  body { background: #1a1a1a; color: #e0e0e0; }\n" +
	"  .h td, td.e, th { border-color: #555; }\n" +
	"  td { border-color: #444; }\n" +
	"  .e { background-color: #3d1012; color: var(--toro-light); }\n" +
	"  .h { background-color: var(--toro-dark); color: #fff; }\n" +
	"  .v { background-color: #1a1a1a; }\n" +
	"  hr { background-color: #444; }\n" +
	"  h1, h2, a { color: #e05060; }\n" +
	"}\n"
