package params

const (
	// ParamsKeyBusiness stores the singleton business parameter record.
	ParamsKeyBusiness = "params/business"
)
