package templates

// Catalog keys, grouped by the emitter that renders them.
const (
	ConfigAction                      = "configuration/action"
	ConfigAddActionToActions          = "configuration/add-action-to-actions"
	ConfigAddBindingToBindings        = "configuration/add-binding-to-bindings"
	ConfigAddCollectionFieldToBinding = "configuration/add-collection-field-to-binding"
	ConfigAddConverterRule            = "configuration/add-converter-rule"
	ConfigAddEmailRule                = "configuration/add-email-rule"
	ConfigAddFieldToAction            = "configuration/add-field-to-action"
	ConfigAddFieldToBinding           = "configuration/add-field-to-binding"
	ConfigAddFieldToFields            = "configuration/add-field-to-fields"
	ConfigAddFragmentConfiguration    = "configuration/add-fragment-configuration"
	ConfigAddMaxLengthRule            = "configuration/add-max-length-rule"
	ConfigAddNumberRule               = "configuration/add-number-rule"
	ConfigAddPageToPages              = "configuration/add-page-to-pages"
	ConfigAddPhoneNumberRule          = "configuration/add-phone-number-rule"
	ConfigAddPostalCodeRule           = "configuration/add-postal-code-rule"
	ConfigAddProcessorFactory         = "configuration/add-processor-factory"
	ConfigConfiguration               = "configuration/configuration"
	ConfigConstant                    = "configuration/constant"
	ConfigField                       = "configuration/field"
	ConfigObjectBinding               = "configuration/object-binding"
	ConfigPage                        = "configuration/page"

	DSAssociateBindingReferenceStatement = "datasource/associate-binding-reference-statement"
	DSAssociateBindingStatement          = "datasource/associate-binding-statement"
	DSAttributeStatement                 = "datasource/attribute-statement"
	DSColumnBindingReferenceStatement    = "datasource/column-binding-reference-statement"
	DSColumnBindingStatement             = "datasource/column-binding-statement"
	DSColumnBindingVariable              = "datasource/column-binding-variable"
	DSDataManager                        = "datasource/data-manager"
	DSDataObject                         = "datasource/data-object"
	DSImportStatement                    = "datasource/import-statement"
	DSListAttributeStatement             = "datasource/list-attribute-statement"
	DSListPropertyGetterStatement        = "datasource/list-property-getter-statement"
	DSListPropertySetterStatement        = "datasource/list-property-setter-statement"
	DSPropertyGetterStatement            = "datasource/property-getter-statement"
	DSPropertySetterStatement            = "datasource/property-setter-statement"

	JSPAssociateDisplayField     = "jsp/associate-display-field"
	JSPAssociateDisplayListField = "jsp/associate-display-list-field"
	JSPAssociateListField        = "jsp/associate-list-field"
	JSPBooleanEntityField        = "jsp/boolean-entity-field"
	JSPBooleanListField          = "jsp/boolean-list-field"
	JSPBreadcrumbAction          = "jsp/breadcrumb-action"
	JSPColumn                    = "jsp/column"
	JSPColumnHeader              = "jsp/column-header"
	JSPColumnSelect              = "jsp/column-select"
	JSPDateEntityField           = "jsp/date-entity-field"
	JSPDateOperatorField         = "jsp/date-operator-field"
	JSPDependentHeader           = "jsp/dependent-header"
	JSPDependentLink             = "jsp/dependent-link"
	JSPDependentMenu             = "jsp/dependent-menu"
	JSPEmailEntityField          = "jsp/email-entity-field"
	JSPEntitiesPage              = "jsp/entities-page"
	JSPEntityPage                = "jsp/entity-page"
	JSPFilterData                = "jsp/filter-data"
	JSPHeaderLink                = "jsp/header-link"
	JSPHiddenEntityField         = "jsp/hidden-entity-field"
	JSPImportStatement           = "jsp/import-statement"
	JSPLookupColumn              = "jsp/lookup-column"
	JSPLookupEntityField         = "jsp/lookup-entity-field"
	JSPLookupField               = "jsp/lookup-field"
	JSPLookupMultipleColumn      = "jsp/lookup-multiple-column"
	JSPLookupMultipleEntityField = "jsp/lookup-multiple-entity-field"
	JSPLookupMultipleField       = "jsp/lookup-multiple-field"
	JSPMemoEntityField           = "jsp/memo-entity-field"
	JSPPagingHeader              = "jsp/paging-header"
	JSPPhoneNumberEntityField    = "jsp/phone-number-entity-field"
	JSPSelectColumnHeader        = "jsp/select-column-header"
	JSPSelectEntitiesPage        = "jsp/select-entities-page"
	JSPTextEntityField           = "jsp/text-entity-field"
	JSPTextOperatorField         = "jsp/text-operator-field"
	JSPTimeEntityField           = "jsp/time-entity-field"
	JSPTimeOperatorField         = "jsp/time-operator-field"

	LookupInsertCategory = "lookup/insert-category"

	ProcessDeleteEntity                   = "process/delete-entity"
	ProcessEditEntity                     = "process/edit-entity"
	ProcessFilterCriteriaDefinition       = "process/filter-criteria-definition"
	ProcessFilterCriteriaDefinitionPaging = "process/filter-criteria-definition-paging"
	ProcessFilterCriteriaStatement        = "process/filter-criteria-statement"
	ProcessSaveEntity                     = "process/save-entity"
	ProcessSelectEntities                 = "process/select-entities"
	ProcessSelectEntitiesPaging           = "process/select-entities-paging"
	ProcessViewEntities                   = "process/view-entities"
	ProcessViewEntitiesPaging             = "process/view-entities-paging"

	ProjectCategorySQL   = "project/category-sql"
	ProjectConfiguration = "project/configuration"
	ProjectConstants     = "project/constants"
	ProjectEntitySQL     = "project/entity-sql"
	ProjectHeaderPage    = "project/header-page"
	ProjectSecuritySQL   = "project/security-sql"

	SecurityInsertAction     = "security/insert-action"
	SecurityInsertField      = "security/insert-field"
	SecurityInsertFieldGroup = "security/insert-field-group"
	SecurityInsertTask       = "security/insert-task"

	SQLAlterTable     = "sql/alter-table"
	SQLAssociateTable = "sql/associate-table"
	SQLColumn         = "sql/column"
	SQLCreateTable    = "sql/create-table"
	SQLForeignKey     = "sql/foreign-key"
	SQLIndex          = "sql/index"
	SQLPrimaryKey     = "sql/primary-key"
	SQLSequence       = "sql/sequence"
)

// Required lists every key LoadFS insists on.
var Required = []string{
	ConfigAction,
	ConfigAddActionToActions,
	ConfigAddBindingToBindings,
	ConfigAddCollectionFieldToBinding,
	ConfigAddConverterRule,
	ConfigAddEmailRule,
	ConfigAddFieldToAction,
	ConfigAddFieldToBinding,
	ConfigAddFieldToFields,
	ConfigAddFragmentConfiguration,
	ConfigAddMaxLengthRule,
	ConfigAddNumberRule,
	ConfigAddPageToPages,
	ConfigAddPhoneNumberRule,
	ConfigAddPostalCodeRule,
	ConfigAddProcessorFactory,
	ConfigConfiguration,
	ConfigConstant,
	ConfigField,
	ConfigObjectBinding,
	ConfigPage,
	DSAssociateBindingReferenceStatement,
	DSAssociateBindingStatement,
	DSAttributeStatement,
	DSColumnBindingReferenceStatement,
	DSColumnBindingStatement,
	DSColumnBindingVariable,
	DSDataManager,
	DSDataObject,
	DSImportStatement,
	DSListAttributeStatement,
	DSListPropertyGetterStatement,
	DSListPropertySetterStatement,
	DSPropertyGetterStatement,
	DSPropertySetterStatement,
	JSPAssociateDisplayField,
	JSPAssociateDisplayListField,
	JSPAssociateListField,
	JSPBooleanEntityField,
	JSPBooleanListField,
	JSPBreadcrumbAction,
	JSPColumn,
	JSPColumnHeader,
	JSPColumnSelect,
	JSPDateEntityField,
	JSPDateOperatorField,
	JSPDependentHeader,
	JSPDependentLink,
	JSPDependentMenu,
	JSPEmailEntityField,
	JSPEntitiesPage,
	JSPEntityPage,
	JSPFilterData,
	JSPHeaderLink,
	JSPHiddenEntityField,
	JSPImportStatement,
	JSPLookupColumn,
	JSPLookupEntityField,
	JSPLookupField,
	JSPLookupMultipleColumn,
	JSPLookupMultipleEntityField,
	JSPLookupMultipleField,
	JSPMemoEntityField,
	JSPPagingHeader,
	JSPPhoneNumberEntityField,
	JSPSelectColumnHeader,
	JSPSelectEntitiesPage,
	JSPTextEntityField,
	JSPTextOperatorField,
	JSPTimeEntityField,
	JSPTimeOperatorField,
	LookupInsertCategory,
	ProcessDeleteEntity,
	ProcessEditEntity,
	ProcessFilterCriteriaDefinition,
	ProcessFilterCriteriaDefinitionPaging,
	ProcessFilterCriteriaStatement,
	ProcessSaveEntity,
	ProcessSelectEntities,
	ProcessSelectEntitiesPaging,
	ProcessViewEntities,
	ProcessViewEntitiesPaging,
	ProjectCategorySQL,
	ProjectConfiguration,
	ProjectConstants,
	ProjectEntitySQL,
	ProjectHeaderPage,
	ProjectSecuritySQL,
	SecurityInsertAction,
	SecurityInsertField,
	SecurityInsertFieldGroup,
	SecurityInsertTask,
	SQLAlterTable,
	SQLAssociateTable,
	SQLColumn,
	SQLCreateTable,
	SQLForeignKey,
	SQLIndex,
	SQLPrimaryKey,
	SQLSequence,
}
