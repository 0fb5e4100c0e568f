package prompt

import (
	"github.com/manifoldco/promptui"
)

// SelectOption is an item in a selection list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

func selectTemplates(withDetails bool) *promptui.SelectTemplates {
	t := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label | white }}",
		Selected: "* {{ .Label | green }}",
	}
	if withDetails {
		t.Details = `
{{ "Description:" | faint }}	{{ .Description }}`
	}
	return t
}

// Select prompts for one of options and returns its value.
func Select(label string, options []SelectOption) (string, error) {
	p := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: selectTemplates(len(options) > 0 && options[0].Description != ""),
		Size:      10,
	}

	i, _, err := p.Run()
	if err != nil {
		return "", wrapError(err)
	}
	return options[i].Value, nil
}

// MultiSelect toggles options until "Done" is picked and returns the chosen
// values in option order. Values in preselected start out chosen.
func MultiSelect(label string, options []SelectOption, preselected []string) ([]string, error) {
	chosen := make(map[string]bool, len(options))
	for _, v := range preselected {
		chosen[v] = true
	}

	for {
		items := make([]string, 0, len(options)+1)
		for _, opt := range options {
			mark := "[ ]"
			if chosen[opt.Value] {
				mark = "[x]"
			}
			items = append(items, mark+" "+opt.Label)
		}
		items = append(items, "Done")

		p := promptui.Select{Label: label, Items: items, Size: len(items)}
		i, _, err := p.Run()
		if err != nil {
			return nil, wrapError(err)
		}
		if i == len(options) {
			break
		}
		v := options[i].Value
		chosen[v] = !chosen[v]
	}

	var out []string
	for _, opt := range options {
		if chosen[opt.Value] {
			out = append(out, opt.Value)
		}
	}
	return out, nil
}
