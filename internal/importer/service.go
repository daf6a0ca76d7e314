package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
)

type Service struct {
	importers map[Bank]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Bank]Importer{
			BankCGD: cgdAdapter{cgd.NewParser()},
		},
	}
}

func (s *Service) Import(bank Bank, r io.Reader) ([]Line, error) {
	imp, ok := s.importers[bank]
	if !ok {
		return nil, fmt.Errorf("unknown bank: %s", bank)
	}

	return imp.Parse(r)
}

// cgdAdapter keeps the cgd package free of an import cycle back to importer.
type cgdAdapter struct {
	p *cgd.Parser
}

func (a cgdAdapter) Parse(r io.Reader) ([]Line, error) {
	rows, err := a.p.Parse(r)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = Line{Date: row.Date, Description: row.Description, Amount: row.Amount}
	}

	return lines, nil
}
