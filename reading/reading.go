package reading

// Column names of the canonical row schema.
const (
	ColumnPlant       = "Planta"
	ColumnTransformer = "Transformador"
	ColumnLocation    = "Ubicacion"
	ColumnSampleDate  = "Fecha de Muestra"
	ColumnReportDate  = "Fecha de Informe"
	ColumnCompany     = "Compañía de Análisis"
)

// FixedColumns lists the identity and date columns that lead every row.
var FixedColumns = []string{
	ColumnPlant,
	ColumnTransformer,
	ColumnLocation,
	ColumnSampleDate,
	ColumnReportDate,
	ColumnCompany,
}

// Record is one gas reading for one transformer on one date.
type Record struct {
	Plant       string
	Transformer string
	Location    string
	Company     string
	SampleRaw   string
	ReportRaw   string
	SampleDate  Date
	ReportDate  Date
	// Gases is aligned to the owning table's Schema.
	Gases []string
	// Seq is the position of the record in the master table.
	Seq int
}

// Key is the transformer identity used for deduplication.
type Key struct {
	Plant       string
	Transformer string
	Location    string
}

func (r Record) Key() Key {
	return Key{Plant: r.Plant, Transformer: r.Transformer, Location: r.Location}
}

func (k Key) Less(other Key) bool {
	if k.Plant != other.Plant {
		return k.Plant < other.Plant
	}
	if k.Transformer != other.Transformer {
		return k.Transformer < other.Transformer
	}
	return k.Location < other.Location
}

// Table is an ordered set of records sharing one gas column schema.
type Table struct {
	Schema  []string
	Records []Record
}

// Header returns the full output header: fixed columns then the gas schema.
func (t *Table) Header() []string {
	header := make([]string, 0, len(FixedColumns)+len(t.Schema))
	header = append(header, FixedColumns...)
	return append(header, t.Schema...)
}

// Append adds a record, assigning its sequence number.
func (t *Table) Append(record Record) {
	record.Seq = len(t.Records)
	t.Records = append(t.Records, record)
}

// Gas returns the value for a gas column, or "" when the column is unknown.
func (t *Table) Gas(record Record, column string) string {
	for i, name := range t.Schema {
		if name == column && i < len(record.Gases) {
			return record.Gases[i]
		}
	}
	return ""
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Row renders a record as output cells aligned to Header. Empty cells become
// MissingValue.
func (t *Table) Row(record Record) []string {
	row := make([]string, 0, len(FixedColumns)+len(t.Schema))
	row = append(row,
		orMissing(record.Plant),
		orMissing(record.Transformer),
		orMissing(record.Location),
		record.SampleDate.Display(),
		record.ReportDate.Display(),
		orMissing(record.Company),
	)
	for i := range t.Schema {
		value := ""
		if i < len(record.Gases) {
			value = record.Gases[i]
		}
		row = append(row, orMissing(value))
	}
	return row
}

// Rows renders every record with Row.
func (t *Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Records))
	for _, record := range t.Records {
		rows = append(rows, t.Row(record))
	}
	return rows
}

func orMissing(value string) string {
	if value == "" {
		return MissingValue
	}
	return value
}
