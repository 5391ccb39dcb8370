package editor

import (
	"errors"

	"vecteditor/internal/config"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxDocumentIDLength = 128

func validateDocumentID(id string) error {
	return validation.Validate(id,
		validation.Required.Error("document id is required"),
		validation.Length(1, maxDocumentIDLength),
	)
}

func validateMoveRequest(req *svgdocSvc.MoveObjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ActiveID, validation.Required),
		validation.Field(&req.OverID, validation.Required),
		validation.Field(&req.Revision, validation.Min(int64(0))),
	)
}

func validateCreateRequest(req *svgdocSvc.CreateObjectRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Type,
			validation.Required,
			validation.In(svgdoc.KindCircle, svgdoc.KindRectangle, svgdoc.KindPath, svgdoc.KindGroup),
		),
	); err != nil {
		return err
	}
	return validatePartial(&req.Attributes)
}

func validateEditRequest(req *svgdocSvc.EditObjectRequest) error {
	if err := validation.Validate(req.ObjectID, validation.Required.Error("object id is required")); err != nil {
		return err
	}
	if req.Changes.IsEmpty() {
		return errors.New("changes cannot be empty")
	}
	return validatePartial(&req.Changes)
}

func validatePointRequest(req *svgdocSvc.AddPathPointRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PathID, validation.Required),
		validation.Field(&req.Command,
			validation.Required,
			validation.By(func(value interface{}) error {
				if cmd, _ := value.(svgdoc.PathCommandType); !cmd.Valid() {
					return errors.New("unknown path command")
				}
				return nil
			}),
		),
	)
}

func validatePartial(p *svgdoc.Partial) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Radius, validation.Min(0)),
		validation.Field(&p.Width, validation.Min(0)),
		validation.Field(&p.Height, validation.Min(0)),
		validation.Field(&p.StrokeWidth, validation.Min(0)),
		validation.Field(&p.Opacity, validation.Min(float32(0)), validation.Max(float32(1))),
		validation.Field(&p.Fill, validation.By(validateColor)),
		validation.Field(&p.Stroke, validation.By(validateColor)),
		validation.Field(&p.Points, validation.Length(0, config.MaxPathPoints), validation.By(validatePoints)),
	)
}

func validateColor(value interface{}) error {
	c, _ := value.(*svgdoc.Color)
	if c == nil {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Red, validation.Min(0), validation.Max(255)),
		validation.Field(&c.Green, validation.Min(0), validation.Max(255)),
		validation.Field(&c.Blue, validation.Min(0), validation.Max(255)),
		validation.Field(&c.Opacity, validation.Min(float32(0)), validation.Max(float32(1))),
	)
}

func validatePoints(value interface{}) error {
	points, _ := value.([]svgdoc.PathCommand)
	for _, p := range points {
		if !p.Type.Valid() {
			return errors.New("unknown path command " + string(p.Type))
		}
		if p.ID != "" {
			if err := svgdoc.ValidateID(p.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
