package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	exportsvc "github.com/smpn3kaledupa/presensi-nilai/services/export"
)

func (cli *commandLine) importStudents(classID int, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	students, err := exportsvc.ReadStudents(f)
	if err != nil {
		return err
	}

	data := school.ImportStudents{ClassID: classID, Students: students}
	if err = data.Validate(cli.validate); err != nil {
		return cli.translateErr(err)
	}

	result, err := cli.schoolSvc.ImportStudents(context.Background(), data)
	logger.Printf("%d student(s) imported into class %d", result.Imported, classID)
	return err
}
