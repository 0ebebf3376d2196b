// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file seeds the template catalog on first run so the
// service is usable out of the box: browsing categories, a vacation request
// template, and a tax-deduction template with a select field.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// Seed populates categories and a starter set of templates when the catalog
// is empty. It is idempotent: a non-empty categories table short-circuits.
func Seed(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats := []domain.Category{
			{ID: uuid.NewString(), Name: "МФЦ и госуслуги", Slug: "mfc-gosuslugi", Icon: "account_balance", Description: "Заявления в МФЦ, получение документов", Order: 1},
			{ID: uuid.NewString(), Name: "Суды", Slug: "courts", Icon: "gavel", Description: "Исковые заявления, жалобы в суд", Order: 2},
			{ID: uuid.NewString(), Name: "Банки", Slug: "banks", Icon: "account_balance_wallet", Description: "Претензии в банк, возврат средств", Order: 3},
			{ID: uuid.NewString(), Name: "ФНС", Slug: "fns", Icon: "receipt_long", Description: "Налоговые вычеты, регистрация ИП", Order: 4},
			{ID: uuid.NewString(), Name: "Работодатели", Slug: "employers", Icon: "work", Description: "Заявления на отпуск, увольнение", Order: 5},
			{ID: uuid.NewString(), Name: "Другие организации", Slug: "other", Icon: "business", Description: "ЖКХ, образование, здравоохранение", Order: 6},
		}
		if err := tx.Create(&cats).Error; err != nil {
			return err
		}
		bySlug := make(map[string]string, len(cats))
		for _, c := range cats {
			bySlug[c.Slug] = c.ID
		}

		vacation := domain.Template{
			ID:              uuid.NewString(),
			Title:           "Заявление на ежегодный оплачиваемый отпуск",
			Description:     "Оформите заявление на очередной отпуск по ТК РФ",
			CategoryID:      bySlug["employers"],
			ApplicantType:   "physical",
			Tags:            "отпуск,работа,тк рф",
			PopularityScore: 120,
			IsActive:        true,
			BodyHTML: `<div style="font-family: 'Times New Roman', serif; font-size: 14pt; line-height: 1.5;">
  <div style="text-align: right; margin-bottom: 20px;">
    Генеральному директору<br/>{{companyName}}<br/>{{directorName}}<br/>
    от {{fullName}}<br/>должность: {{position}}
  </div>
  <h2 style="text-align: center; margin: 30px 0;">ЗАЯВЛЕНИЕ</h2>
  <p style="text-indent: 40px;">
    Прошу предоставить мне ежегодный оплачиваемый отпуск с {{startDate}} по {{endDate}}
    продолжительностью {{days}} календарных дней.
  </p>
  <div style="margin-top: 40px;">
    <p><span style="display: inline-block; width: 150px;">Дата:</span> {{date}}<br/>
       <span style="display: inline-block; width: 150px;">Подпись:</span> _____________</p>
  </div>
</div>`,
		}
		if err := tx.Create(&vacation).Error; err != nil {
			return err
		}

		vacationFields := []domain.FormField{
			{TemplateID: vacation.ID, FieldName: "companyName", Type: domain.FieldText, Label: "Название организации", Placeholder: "ООО «Ромашка»", StepNumber: 1, Order: 1, IsRequired: true},
			{TemplateID: vacation.ID, FieldName: "directorName", Type: domain.FieldText, Label: "ФИО руководителя", Placeholder: "Иванову И.И.", StepNumber: 1, Order: 2, IsRequired: true},
			{TemplateID: vacation.ID, FieldName: "fullName", Type: domain.FieldText, Label: "Ваши ФИО", Placeholder: "Петров Петр Петрович", StepNumber: 1, Order: 3, IsRequired: true},
			{TemplateID: vacation.ID, FieldName: "position", Type: domain.FieldText, Label: "Ваша должность", Placeholder: "менеджер", StepNumber: 1, Order: 4, IsRequired: true},
			{TemplateID: vacation.ID, FieldName: "startDate", Type: domain.FieldDate, Label: "Дата начала отпуска", Placeholder: "01.07.2026", StepNumber: 2, Order: 1, IsRequired: true},
			{TemplateID: vacation.ID, FieldName: "endDate", Type: domain.FieldDate, Label: "Дата окончания отпуска", Placeholder: "14.07.2026", StepNumber: 2, Order: 2, IsRequired: true},
			{TemplateID: vacation.ID, FieldName: "days", Type: domain.FieldNumber, Label: "Количество календарных дней", Placeholder: "14", StepNumber: 2, Order: 3, IsRequired: true, ValidationRules: `{"min":1,"max":365}`},
			{TemplateID: vacation.ID, FieldName: "date", Type: domain.FieldDate, Label: "Дата подачи заявления", Placeholder: "15.06.2026", StepNumber: 2, Order: 4, IsRequired: true},
		}
		for i := range vacationFields {
			vacationFields[i].ID = uuid.NewString()
		}
		if err := tx.Create(&vacationFields).Error; err != nil {
			return err
		}

		deduction := domain.Template{
			ID:              uuid.NewString(),
			Title:           "Заявление на налоговый вычет за лечение",
			Description:     "Получите налоговый вычет за медицинские услуги и лекарства",
			CategoryID:      bySlug["fns"],
			ApplicantType:   "physical",
			Tags:            "налоги,вычет,лечение",
			PopularityScore: 95,
			IsActive:        true,
			BodyHTML: `<div style="font-family: 'Times New Roman', serif; font-size: 14pt; line-height: 1.5;">
  <div style="text-align: right; margin-bottom: 20px;">
    В Инспекцию Федеральной налоговой службы<br/>по {{district}}<br/>
    от {{fullName}}<br/>ИНН {{inn}}<br/>Адрес: {{address}}<br/>Телефон: {{phone}}
  </div>
  <h2 style="text-align: center; margin: 30px 0;">ЗАЯВЛЕНИЕ</h2>
  <h3 style="text-align: center; margin: 20px 0;">о предоставлении социального налогового вычета</h3>
  <p style="text-indent: 40px;">
    Прошу предоставить мне социальный налоговый вычет за {{year}} год в сумме фактически
    произведенных расходов {{amount}} рублей, уплаченных мной за {{treatmentType}}.
  </p>
  <div style="margin-top: 40px;">
    <p><span style="display: inline-block; width: 150px;">Дата:</span> {{date}}<br/>
       <span style="display: inline-block; width: 150px;">Подпись:</span> _____________</p>
  </div>
</div>`,
		}
		if err := tx.Create(&deduction).Error; err != nil {
			return err
		}

		deductionFields := []domain.FormField{
			{TemplateID: deduction.ID, FieldName: "district", Type: domain.FieldText, Label: "Район (налоговая инспекция)", Placeholder: "г. Москве № 15", StepNumber: 1, Order: 1, IsRequired: true},
			{TemplateID: deduction.ID, FieldName: "fullName", Type: domain.FieldText, Label: "Ваши ФИО", Placeholder: "Петров Петр Петрович", StepNumber: 1, Order: 2, IsRequired: true},
			{TemplateID: deduction.ID, FieldName: "inn", Type: domain.FieldText, Label: "ИНН", Placeholder: "771234567890", StepNumber: 1, Order: 3, IsRequired: true, ValidationRules: `{"pattern":"^\\d{12}$"}`},
			{TemplateID: deduction.ID, FieldName: "address", Type: domain.FieldTextarea, Label: "Адрес регистрации", Placeholder: "г. Москва, ул. Ленина, д. 1, кв. 1", StepNumber: 1, Order: 4, IsRequired: true},
			{TemplateID: deduction.ID, FieldName: "phone", Type: domain.FieldText, Label: "Телефон", Placeholder: "+7 900 000-00-00", StepNumber: 1, Order: 5, IsRequired: true},
			{TemplateID: deduction.ID, FieldName: "year", Type: domain.FieldNumber, Label: "Год, за который оформляется вычет", Placeholder: "2025", StepNumber: 2, Order: 1, IsRequired: true, ValidationRules: `{"min":2000,"max":2100}`},
			{TemplateID: deduction.ID, FieldName: "amount", Type: domain.FieldNumber, Label: "Сумма расходов, руб.", Placeholder: "45000", StepNumber: 2, Order: 2, IsRequired: true, ValidationRules: `{"min":1,"max":120000}`},
			{TemplateID: deduction.ID, FieldName: "treatmentType", Type: domain.FieldSelect, Label: "Вид расходов", StepNumber: 2, Order: 3, IsRequired: true, Options: "медицинские услуги,лекарственные препараты,дорогостоящее лечение"},
			{TemplateID: deduction.ID, FieldName: "date", Type: domain.FieldDate, Label: "Дата подачи заявления", Placeholder: "20.01.2026", StepNumber: 2, Order: 4, IsRequired: true},
		}
		for i := range deductionFields {
			deductionFields[i].ID = uuid.NewString()
		}
		return tx.Create(&deductionFields).Error
	})
}
