package reading

// ReconcileResult counts what the date pass changed.
type ReconcileResult struct {
	SampleParsed     int
	ReportParsed     int
	SampleBackfilled int
	BothMissing      int
}

// Reconcile parses the raw sample and report dates of every record and
// backfills a missing sample date from the report date. It must run before
// Latest so deduplication sees the best available date.
func (t *Table) Reconcile() ReconcileResult {
	var result ReconcileResult
	for i := range t.Records {
		record := &t.Records[i]
		record.SampleDate = ParseDate(record.SampleRaw)
		record.ReportDate = ParseDate(record.ReportRaw)

		if record.SampleDate.Valid {
			result.SampleParsed++
		}
		if record.ReportDate.Valid {
			result.ReportParsed++
		}

		switch {
		case !record.SampleDate.Valid && record.ReportDate.Valid:
			record.SampleDate = record.ReportDate
			result.SampleBackfilled++
		case !record.SampleDate.Valid:
			result.BothMissing++
		}
	}
	return result
}
