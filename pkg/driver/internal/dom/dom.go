// Package dom holds the page-side scripts shared by the browser drivers.
package dom

// LabelFunc computes an element's accessible name. It follows the common
// cases of the accname algorithm: aria-labelledby, aria-label, associated
// <label>s, wrapping <label>, then title/placeholder/alt, then text content.
const LabelFunc = `function (el) {
	var clean = function (s) { return (s || '').replace(/\s+/g, ' ').trim(); };
	var byIds = el.getAttribute('aria-labelledby');
	if (byIds) {
		var parts = byIds.split(/\s+/).map(function (id) {
			var ref = document.getElementById(id);
			return ref ? ref.textContent : '';
		});
		var joined = clean(parts.join(' '));
		if (joined) return joined;
	}
	var aria = clean(el.getAttribute('aria-label'));
	if (aria) return aria;
	if (el.labels && el.labels.length) {
		return clean(Array.prototype.map.call(el.labels, function (l) { return l.textContent; }).join(' '));
	}
	var wrap = el.closest ? el.closest('label') : null;
	if (wrap) return clean(wrap.textContent);
	var attrs = ['title', 'placeholder', 'alt'];
	for (var i = 0; i < attrs.length; i++) {
		var v = clean(el.getAttribute(attrs[i]));
		if (v) return v;
	}
	if (el.tagName === 'INPUT' && /^(submit|button|reset)$/i.test(el.type)) return clean(el.value);
	return clean(el.textContent);
}`

// WindowSizeFunc returns the outer window size as {width, height}.
const WindowSizeFunc = `function () {
	return { width: window.outerWidth, height: window.outerHeight };
}`

// Call wraps fn in a WebDriver script body that applies it to arguments.
func Call(fn string) string {
	return "return (" + fn + ").apply(null, arguments);"
}
