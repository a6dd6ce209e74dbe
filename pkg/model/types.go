package model

import internalmodel "github.com/goliatone/go-vortex/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText     = internalmodel.FieldTypeText
	FieldTypeEmail    = internalmodel.FieldTypeEmail
	FieldTypePassword = internalmodel.FieldTypePassword
	FieldTypeTextArea = internalmodel.FieldTypeTextArea
	FieldTypeDate     = internalmodel.FieldTypeDate
	FieldTypeSelect   = internalmodel.FieldTypeSelect
	FieldTypeFile     = internalmodel.FieldTypeFile
	FieldTypeCode     = internalmodel.FieldTypeCode
)

const (
	ValidationRuleRequired       = internalmodel.ValidationRuleRequired
	ValidationRuleEmail          = internalmodel.ValidationRuleEmail
	ValidationRuleMinLength      = internalmodel.ValidationRuleMinLength
	ValidationRuleLength         = internalmodel.ValidationRuleLength
	ValidationRuleDigits         = internalmodel.ValidationRuleDigits
	ValidationRulePattern        = internalmodel.ValidationRulePattern
	ValidationRuleStrongPassword = internalmodel.ValidationRuleStrongPassword
	ValidationRuleMatches        = internalmodel.ValidationRuleMatches
	ValidationRuleMinAge         = internalmodel.ValidationRuleMinAge
	ValidationRuleUpload         = internalmodel.ValidationRuleUpload
)

type ValidationRule = internalmodel.ValidationRule
type Option = internalmodel.Option
type Field = internalmodel.Field
type FormModel = internalmodel.FormModel

// FieldLabel derives the label of a field that declares none.
func FieldLabel(name string) string {
	return internalmodel.FieldLabel(name)
}
