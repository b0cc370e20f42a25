package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/jiaming2012/american-pricer/src/models"
)

func ReadContractRows(r io.Reader) ([]*models.ContractRowDTO, error) {
	var rows []*models.ContractRowDTO
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("ReadContractRows: %w", err)
	}

	return rows, nil
}

func ReadContractRowsFromFile(path string) ([]*models.ContractRowDTO, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadContractRowsFromFile: %w", err)
	}

	defer f.Close()

	return ReadContractRows(f)
}

func WriteContractResults(w io.Writer, rows []*models.ContractResultRowDTO) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("WriteContractResults: %w", err)
	}

	return nil
}
