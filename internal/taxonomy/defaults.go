package taxonomy

// Node is one category with its subcategory names, used for the default
// taxonomy and for bulk replaces.
type Node struct {
	Name  string   `json:"name"`
	Emoji string   `json:"emoji"`
	Subs  []string `json:"subcategories"`
}

// DefaultCategories is the static taxonomy seeded on first run.
var DefaultCategories = []Node{
	{
		Name:  "Food & Dining",
		Emoji: "🍽️",
		Subs: []string{
			"Restaurants & Cafes",
			"Food Delivery",
			"Groceries",
			"Vegetables & Fruits",
			"Street Food",
			"Tea & Coffee",
			"Sweets & Bakery",
			"Beverages",
		},
	},
	{
		Name:  "Shopping",
		Emoji: "🛍️",
		Subs: []string{
			"Clothing",
			"Footwear",
			"Electronics & Gadgets",
			"Cosmetics & Beauty",
			"Personal Hygiene",
			"Gifts",
			"Books",
			"Online Shopping",
		},
	},
	{
		Name:  "Transportation",
		Emoji: "🚗",
		Subs: []string{
			"Fuel",
			"Cab & Rideshare",
			"Bus & Metro",
			"Train",
			"Flight",
			"Parking",
			"Vehicle Servicing",
			"Tolls",
		},
	},
	{
		Name:  "Bills & Utilities",
		Emoji: "💡",
		Subs: []string{
			"Electricity Bill",
			"Water Bill",
			"Gas",
			"Mobile Recharge",
			"Internet",
			"House Rent",
			"Credit Card Payment",
			"Loan EMI",
		},
	},
	{
		Name:  "Health & Medical",
		Emoji: "💊",
		Subs: []string{
			"Doctor Consultation",
			"Medicines",
			"Lab Tests",
			"Dental Care",
			"Eye Care",
			"Health Insurance",
		},
	},
	{
		Name:  "Entertainment",
		Emoji: "🎬",
		Subs: []string{
			"Movies",
			"Streaming Subscriptions",
			"Games",
			"Events & Concerts",
			"Sports",
		},
	},
	{
		Name:  "Education",
		Emoji: "📚",
		Subs: []string{
			"Tuition Fees",
			"Online Courses",
			"Stationery",
			"Exams & Certifications",
		},
	},
	{
		Name:  "Travel",
		Emoji: "✈️",
		Subs: []string{
			"Hotels",
			"Sightseeing",
			"Local Transport",
			"Visa & Documents",
		},
	},
	{
		Name:  "Family & Home",
		Emoji: "🏠",
		Subs: []string{
			"Household Supplies",
			"Furniture",
			"Repairs & Maintenance",
			"Kids",
			"Pets",
		},
	},
	{
		Name:  "Others",
		Emoji: "📦",
		Subs: []string{
			"Donations",
			"Fees & Charges",
			"Miscellaneous",
		},
	},
}
