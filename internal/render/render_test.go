package render

import (
	"strings"
	"testing"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

func vacationTemplate() *domain.Template {
	return &domain.Template{
		Title: "Заявление на отпуск",
		BodyHTML: "<p>Директору {{companyName}}<br>{{directorName}}</p>" +
			"<p>от {{fullName}}, {{position}}</p>" +
			"<p>Прошу предоставить отпуск с {{startDate}} по {{endDate}} ({{days}} дн.)</p>" +
			"<p>{{date}}</p>",
		Fields: []domain.FormField{
			{FieldName: "companyName"},
			{FieldName: "directorName"},
			{FieldName: "fullName"},
			{FieldName: "position"},
			{FieldName: "startDate"},
			{FieldName: "endDate"},
			{FieldName: "days"},
			{FieldName: "date"},
		},
	}
}

func TestSubstitute_FillsEveryPlaceholder(t *testing.T) {
	tpl := vacationTemplate()
	answers := map[string]string{
		"companyName":  "ООО Ромашка",
		"directorName": "Петров П.П.",
		"fullName":     "Иванов И.И.",
		"position":     "инженер",
		"startDate":    "01.09.2025",
		"endDate":      "14.09.2025",
		"days":         "14",
		"date":         "25.08.2025",
	}

	body := Substitute(tpl, answers)

	for _, f := range tpl.Fields {
		if strings.Contains(body, "{{"+f.FieldName+"}}") {
			t.Fatalf("placeholder %q left in body", f.FieldName)
		}
	}
	for _, want := range []string{"ООО Ромашка", "01.09.2025", "14 дн."} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestSubstitute_MissingAnswersBecomeEmpty(t *testing.T) {
	tpl := &domain.Template{
		BodyHTML: "<p>{{name}} ({{comment}})</p>",
		Fields: []domain.FormField{
			{FieldName: "name"},
			{FieldName: "comment"},
		},
	}

	body := Substitute(tpl, map[string]string{"name": "Иванов"})

	if body != "<p>Иванов ()</p>" {
		t.Fatalf("body = %q", body)
	}
}

func TestSubstitute_UnknownPlaceholdersStay(t *testing.T) {
	tpl := &domain.Template{
		BodyHTML: "<p>{{name}} {{typo}}</p>",
		Fields:   []domain.FormField{{FieldName: "name"}},
	}

	body := Substitute(tpl, map[string]string{"name": "Иванов", "typo": "ignored"})

	// Only schema fields are substituted; stray markers are left alone.
	if body != "<p>Иванов {{typo}}</p>" {
		t.Fatalf("body = %q", body)
	}
}

func TestSubstitute_RepeatedPlaceholder(t *testing.T) {
	tpl := &domain.Template{
		BodyHTML: "<p>{{name}}</p><p>Подпись: {{name}}</p>",
		Fields:   []domain.FormField{{FieldName: "name"}},
	}

	body := Substitute(tpl, map[string]string{"name": "Иванов"})

	if strings.Count(body, "Иванов") != 2 {
		t.Fatalf("repeated placeholder not replaced globally: %q", body)
	}
}

func TestPage_WrapsBody(t *testing.T) {
	page := Page("Заявление", "<p>тело</p>")

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Заявление</title>",
		"<p>тело</p>",
		"size: A4",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestDocument_EndToEnd(t *testing.T) {
	tpl := vacationTemplate()
	answers := map[string]string{"companyName": "ООО Ромашка"}

	page := Document(tpl, "Заявление на отпуск", answers)

	if !strings.Contains(page, "ООО Ромашка") {
		t.Fatal("substituted answer missing from page")
	}
	if !strings.Contains(page, "<title>Заявление на отпуск</title>") {
		t.Fatal("title missing from page")
	}
}
