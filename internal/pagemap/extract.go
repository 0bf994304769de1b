package pagemap

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// Extract reads the page map of the current document
func Extract(ctx context.Context, page *rod.Page) (*PageMap, error) {
	page = page.Context(ctx)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read page info: %w", err)
	}

	res, err := page.Eval(extractElementsJS)
	if err != nil {
		return nil, fmt.Errorf("failed to extract elements: %w", err)
	}
	var elements []Element
	for _, v := range res.Value.Arr() {
		elements = append(elements, Element{
			Selector:    v.Get("selector").String(),
			Type:        v.Get("type").String(),
			Text:        v.Get("text").String(),
			Placeholder: v.Get("placeholder").String(),
			Name:        v.Get("name").String(),
			ID:          v.Get("id").String(),
		})
	}

	res, err = page.Eval(extractNavigationJS)
	if err != nil {
		return nil, fmt.Errorf("failed to extract navigation: %w", err)
	}
	var navigation []NavItem
	for _, v := range res.Value.Arr() {
		navigation = append(navigation, NavItem{
			Selector: v.Get("selector").String(),
			Text:     v.Get("text").String(),
			Href:     v.Get("href").String(),
		})
	}

	return &PageMap{
		URL:        info.URL,
		Title:      info.Title,
		Elements:   elements,
		Navigation: navigation,
	}, nil
}

const extractElementsJS = `() => {
	const elements = [];
	const seen = new Set();

	// CSS class names can't start with a digit or contain selector syntax
	function isValidCSSClass(cls) {
		if (!cls || cls.length === 0) return false;
		if (/^-?[0-9]/.test(cls)) return false;
		if (/[.:#\[\]()>~+*\/\\]/.test(cls)) return false;
		return true;
	}

	function getSelector(el) {
		if (el.id && isValidCSSClass(el.id)) return '#' + el.id;
		if (el.name) return el.tagName.toLowerCase() + '[name="' + el.name + '"]';

		if (el.className && typeof el.className === 'string') {
			const classes = el.className.trim().split(/\s+/).filter(isValidCSSClass).slice(0, 2);
			if (classes.length > 0) {
				const selector = el.tagName.toLowerCase() + '.' + classes.join('.');
				try {
					if (document.querySelectorAll(selector).length === 1) return selector;
				} catch (e) {}
			}
		}

		const parent = el.parentElement;
		if (parent) {
			const index = Array.from(parent.children).indexOf(el) + 1;
			const parentSelector = getSelector(parent);
			if (parentSelector) {
				return parentSelector + ' > ' + el.tagName.toLowerCase() + ':nth-child(' + index + ')';
			}
		}
		return el.tagName.toLowerCase();
	}

	function collect(query, type) {
		document.querySelectorAll(query).forEach(el => {
			if (!el.offsetParent) return;
			const selector = getSelector(el);
			if (seen.has(selector)) return;
			seen.add(selector);
			elements.push({
				selector: selector,
				type: type(el),
				text: (el.textContent || el.value || '').trim().slice(0, 50),
				placeholder: el.placeholder || undefined,
				id: el.id || undefined,
				name: el.name || undefined
			});
		});
	}

	collect('button, [role="button"], input[type="submit"], input[type="button"]', () => 'button');
	collect('input:not([type="hidden"]):not([type="submit"]):not([type="button"]), textarea', el => el.type || 'text');
	collect('select', () => 'select');
	collect('a[href]:not([href^="#"]):not([href^="javascript:"])', () => 'link');
	return elements;
}`

const extractNavigationJS = `() => {
	const items = [];
	const seen = new Set();
	document.querySelectorAll('nav a, header a, aside a, [role="navigation"] a').forEach(el => {
		if (!el.offsetParent) return;
		const href = el.getAttribute('href');
		if (!href || href === '#' || href.startsWith('javascript:')) return;
		if (seen.has(href)) return;
		seen.add(href);
		items.push({
			selector: el.id ? '#' + el.id : 'a[href="' + href + '"]',
			text: (el.textContent || '').trim().slice(0, 30),
			href: href
		});
	});
	return items;
}`
