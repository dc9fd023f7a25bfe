package convert

// multiRowWriter duplicates every header and row to each of its writers.
type multiRowWriter []RowWriter

// MultiRowWriter returns a RowWriter that writes to all of ws in order and
// stops at the first error.
func MultiRowWriter(ws ...RowWriter) RowWriter {
	if len(ws) == 1 {
		return ws[0]
	}
	return multiRowWriter(ws)
}

func (m multiRowWriter) WriteHeader(columns []string) error {
	for _, w := range m {
		if err := w.WriteHeader(columns); err != nil {
			return err
		}
	}
	return nil
}

func (m multiRowWriter) WriteRow(fields []string) error {
	for _, w := range m {
		if err := w.WriteRow(fields); err != nil {
			return err
		}
	}
	return nil
}
