package entity

type Restaurant struct {
	ID             int    `json:"id"`
	CNPJ           string `json:"cnpj"`
	Name           string `json:"name"`
	State          string `json:"state"`
	City           string `json:"city"`
	Type           string `json:"type"`
	OperatingHours string `json:"operating_hours"`
	PostalCode     string `json:"postal_code"`
	StreetNumber   string `json:"street_number"`
}

// RestaurantInput carries every mutable field. Create and update both take the
// full set; there is no partial update.
type RestaurantInput struct {
	CNPJ           string `json:"cnpj" validate:"required,cnpj"`
	Name           string `json:"name" validate:"required,max=100"`
	State          string `json:"state" validate:"required,uf"`
	City           string `json:"city" validate:"required,max=100"`
	Type           string `json:"type" validate:"required,max=50"`
	OperatingHours string `json:"operating_hours" validate:"max=200"`
	PostalCode     string `json:"postal_code" validate:"required,cep"`
	StreetNumber   string `json:"street_number" validate:"required,max=10"`
}

// ToRestaurant builds a record with the given id from the input fields.
func (in RestaurantInput) ToRestaurant(id int) Restaurant {
	return Restaurant{
		ID:             id,
		CNPJ:           in.CNPJ,
		Name:           in.Name,
		State:          in.State,
		City:           in.City,
		Type:           in.Type,
		OperatingHours: in.OperatingHours,
		PostalCode:     in.PostalCode,
		StreetNumber:   in.StreetNumber,
	}
}

/*
Mysql Table

CREATE TABLE restaurants (
	id INT AUTO_INCREMENT PRIMARY KEY,
	cnpj VARCHAR(18) NOT NULL,
	name VARCHAR(100) NOT NULL,
	state VARCHAR(2) NOT NULL,
	city VARCHAR(100) NOT NULL,
	type VARCHAR(50) NOT NULL,
	operating_hours VARCHAR(200),
	postal_code VARCHAR(9) NOT NULL,
	street_number VARCHAR(10) NOT NULL,
	UNIQUE KEY cnpj_idx (cnpj)
);
*/
