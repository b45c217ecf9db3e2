package api

import "context"

// ExportCSV скачивает готовый CSV-отчёт за дату. Имя файла — из
// Content-Disposition, при отсутствии заголовка подставляем своё.
func (c *Client) ExportCSV(ctx context.Context, token, date string) ([]byte, string, error) {
	raw, name, err := c.download(ctx, "export_csv", "/reports/export/csv/"+date, token, "не удалось выгрузить CSV")
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		name = "attendance_" + date + ".csv"
	}
	return raw, name, nil
}

func (c *Client) ExportExcel(ctx context.Context, token, date string) ([]byte, string, error) {
	raw, name, err := c.download(ctx, "export_excel", "/reports/export/excel/"+date, token, "не удалось выгрузить Excel")
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		name = "attendance_" + date + ".xlsx"
	}
	return raw, name, nil
}
