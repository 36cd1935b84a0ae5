package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

const fieldsPerRecord = 4

func decodeRecords(r io.Reader) ([]entity.SampleRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fieldsPerRecord

	var records []entity.SampleRecord
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrManifestCorrupt, err)
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", entity.ErrManifestCorrupt, line, err)
		}
		records = append(records, rec)
	}
}

func parseRow(row []string) (entity.SampleRecord, error) {
	split, err := entity.ParseSplit(row[0])
	if err != nil {
		return entity.SampleRecord{}, err
	}
	if row[1] == "" || row[2] == "" {
		return entity.SampleRecord{}, errors.New("empty class or sample id")
	}
	count, err := strconv.Atoi(row[3])
	if err != nil {
		return entity.SampleRecord{}, fmt.Errorf("frame count: %w", err)
	}
	if count < 0 {
		return entity.SampleRecord{}, fmt.Errorf("negative frame count %d", count)
	}
	return entity.SampleRecord{Split: split, Class: row[1], SampleID: row[2], FrameCount: count}, nil
}

func encodeRecords(w io.Writer, records []entity.SampleRecord) error {
	cw := csv.NewWriter(w)
	for _, r := range records {
		if err := cw.Write([]string{string(r.Split), r.Class, r.SampleID, strconv.Itoa(r.FrameCount)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
