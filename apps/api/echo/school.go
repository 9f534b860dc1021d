package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/school"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	exportsvc "github.com/smpn3kaledupa/presensi-nilai/services/export"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}
	admin := roleMiddleware(user.RoleAdmin)

	cg := g.Group("/classes", jwt)
	cg.POST("", api.createClass, admin)
	cg.GET("", api.queryClasses)

	sg := g.Group("/subjects", jwt)
	sg.POST("", api.createSubject, admin)
	sg.GET("", api.querySubjects)

	stg := g.Group("/students", jwt)
	stg.POST("", api.createStudent, admin)
	stg.GET("", api.queryStudents)
	stg.POST("/import", api.importStudents, admin)
	stg.GET("/:id", api.retrieveStudent)

	tg := g.Group("/teachers", jwt, admin)
	tg.POST("", api.createTeacher)
	tg.GET("", api.queryTeachers)

	pg := g.Group("/parents", jwt, admin)
	pg.POST("", api.createParent)
	pg.GET("", api.queryParents)

	ag := g.Group("/teacher-assignments", jwt, admin)
	ag.POST("", api.createTeacherAssignment)
	ag.GET("", api.queryTeacherAssignments)
}

// Classes

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	var filter school.ClassFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ClassFilter")
	}

	classes, err := api.svc.QueryClasses(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []school.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

// Subjects

func (api *schoolApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subj, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []school.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

// Students

func (api *schoolApi) createStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	var filter school.StudentFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}

	students, err := api.svc.QueryStudents(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) retrieveStudent(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	stu, err := api.svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

// importStudents accepts either a JSON body or a multipart form with class_id and an xlsx file.
func (api *schoolApi) importStudents(ctx echo.Context) error {
	var data school.ImportStudents
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := bindImportSheet(ctx, &data); err != nil {
			return err
		}
	} else if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImportStudents")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	result, err := api.svc.ImportStudents(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusCreated, result)
}

func bindImportSheet(ctx echo.Context, data *school.ImportStudents) error {
	classID, err := strconv.Atoi(ctx.FormValue("class_id"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "class_id must be a number"})
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "an xlsx file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	students, err := exportsvc.ReadStudents(f)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: errors.Cause(err).Error()})
	}
	data.ClassID = classID
	data.Students = students
	return nil
}

// Teachers

func (api *schoolApi) createTeacher(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tchr, err := api.svc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tchr)
}

func (api *schoolApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []school.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

// Parents

func (api *schoolApi) createParent(ctx echo.Context) error {
	var data school.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prnt, err := api.svc.CreateParent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ctx.JSON(http.StatusCreated, prnt)
}

func (api *schoolApi) queryParents(ctx echo.Context) error {
	parents, err := api.svc.QueryParents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	if parents == nil {
		parents = []school.Parent{}
	}
	return ctx.JSON(http.StatusOK, parents)
}

// Teacher Assignments

func (api *schoolApi) createTeacherAssignment(ctx echo.Context) error {
	var data school.NewTeacherAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacherAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	asgmt, err := api.svc.CreateTeacherAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher assignment")
	}
	return ctx.JSON(http.StatusCreated, asgmt)
}

func (api *schoolApi) queryTeacherAssignments(ctx echo.Context) error {
	var filter school.TeacherAssignmentFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to TeacherAssignmentFilter")
	}

	asgmts, err := api.svc.QueryTeacherAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying teacher assignments")
	}
	if asgmts == nil {
		asgmts = []school.TeacherAssignment{}
	}
	return ctx.JSON(http.StatusOK, asgmts)
}
