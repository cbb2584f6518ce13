package manual

import "fmt"

const (
	rightArrow = "&#9656;"
	downArrow  = "&#9662;"
)

// ToggleScriptFor returns the script backing a collapsible nested list. The function named
// name swaps collapsed and expanded classes on the clicked span and shows or hides the
// sibling list.
func ToggleScriptFor(name, collapsed, expanded string) string {
	return fmt.Sprintf(`<script type="text/javascript">
function %s(elem) {
  var html_class = elem.className;
  var children = elem.parentNode.childNodes;
  if (html_class == '%s') {
    elem.className = '%s';
    children[3].style.display = 'block';
    elem.innerHTML = '%s'
  } else if (html_class == '%s') {
    elem.className = '%s';
    children[3].style.display = 'none';
    elem.innerHTML = '%s'
  }
}
</script>
`, name, collapsed, expanded, downArrow, expanded, collapsed, rightArrow)
}

// ToggleScript returns the table of contents toggle script.
func ToggleScript() string {
	return ToggleScriptFor("toggleTOC", "toc_collapsed", "toc_expanded")
}

// ToggleSpan returns the clickable marker in front of a table of contents entry. Entries
// without children get an inert spacer.
func ToggleSpan(collapsible bool) string {
	if collapsible {
		return `<span class="toc_collapsed" style="float: left; width: 1em; cursor: pointer;" onclick="toggleTOC(this);">` + rightArrow + `</span>`
	}
	return `<span class="toc_empty" style="float: left; width: 1em;" onclick="toggleTOC(this);">&nbsp;</span>`
}

// Arrow returns the marker for an expanded or collapsed list.
func Arrow(expanded bool) string {
	if expanded {
		return downArrow
	}
	return rightArrow
}
