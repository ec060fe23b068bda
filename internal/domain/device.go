package domain

// Device is an inverter registered to a customer.
type Device struct {
	DeviceID          string `json:"deviceId" dynamodbav:"deviceId" validate:"required"`
	SerialNo          string `json:"serialNo" dynamodbav:"serialNo" validate:"required"`
	DeviceType        string `json:"deviceType" dynamodbav:"deviceType"`
	ManufacturingDate string `json:"manufacturingDate" dynamodbav:"manufacturingDate"`
	WarrantyEndDate   string `json:"warrantyEndDate" dynamodbav:"warrantyEndDate"`
	CustomerID        string `json:"customerId" dynamodbav:"customerId" validate:"required"`
	CreatedAt         string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt         string `json:"updatedAt" dynamodbav:"updatedAt"`
}
