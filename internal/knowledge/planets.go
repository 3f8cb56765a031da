package knowledge

import "github.com/gcbaptista/space-chatbot/model"

var planets = []planetEntry{
	{id: "sun", facts: model.PlanetFacts{
		Name:            "Mặt Trời",
		EnglishName:     "Sun",
		Description:     "Mặt Trời là ngôi sao ở trung tâm Hệ Mặt Trời, chiếm khoảng 99,86% tổng khối lượng của cả hệ.",
		Diameter:        "1.392.700 km",
		DistanceFromSun: "0 km",
		OrbitalPeriod:   "khoảng 230 triệu năm quanh tâm Dải Ngân Hà",
		DayLength:       "khoảng 25 ngày ở xích đạo",
		Temperature:     "khoảng 5.500°C ở bề mặt, 15 triệu °C ở lõi",
		Facts: []string{
			"Ánh sáng Mặt Trời mất khoảng 8 phút 20 giây để đến Trái Đất",
			"Mặt Trời là một sao lùn vàng khoảng 4,6 tỷ năm tuổi",
			"Năng lượng của Mặt Trời đến từ phản ứng tổng hợp hạt nhân hydro thành heli",
		},
	}},
	{id: "mercury", facts: model.PlanetFacts{
		Name:            "Sao Thủy",
		EnglishName:     "Mercury",
		Description:     "Sao Thủy là hành tinh nhỏ nhất và gần Mặt Trời nhất trong Hệ Mặt Trời.",
		Diameter:        "4.879 km",
		DistanceFromSun: "57,9 triệu km",
		OrbitalPeriod:   "88 ngày Trái Đất",
		DayLength:       "176 ngày Trái Đất",
		Temperature:     "từ -173°C đến 427°C",
		Moons:           0,
		Facts: []string{
			"Sao Thủy gần như không có khí quyển",
			"Một ngày trên Sao Thủy dài hơn một năm của nó",
		},
	}},
	{id: "venus", facts: model.PlanetFacts{
		Name:            "Sao Kim",
		EnglishName:     "Venus",
		Description:     "Sao Kim là hành tinh nóng nhất Hệ Mặt Trời do hiệu ứng nhà kính cực mạnh từ bầu khí quyển dày đặc CO2.",
		Diameter:        "12.104 km",
		DistanceFromSun: "108,2 triệu km",
		OrbitalPeriod:   "225 ngày Trái Đất",
		DayLength:       "243 ngày Trái Đất",
		Temperature:     "khoảng 465°C",
		Moons:           0,
		Facts: []string{
			"Sao Kim tự quay ngược chiều so với hầu hết các hành tinh",
			"Sao Kim là thiên thể sáng nhất trên bầu trời đêm sau Mặt Trăng, còn gọi là sao Mai hay sao Hôm",
		},
	}},
	{id: "earth", facts: model.PlanetFacts{
		Name:            "Trái Đất",
		EnglishName:     "Earth",
		Description:     "Trái Đất là hành tinh thứ ba tính từ Mặt Trời và là nơi duy nhất được biết đến có sự sống.",
		Diameter:        "12.742 km",
		DistanceFromSun: "149,6 triệu km",
		OrbitalPeriod:   "365,25 ngày",
		DayLength:       "24 giờ",
		Temperature:     "trung bình khoảng 15°C",
		Moons:           1,
		Facts: []string{
			"Khoảng 71% bề mặt Trái Đất được bao phủ bởi nước",
			"Từ trường Trái Đất bảo vệ sự sống khỏi gió Mặt Trời",
		},
	}},
	{id: "moon", facts: model.PlanetFacts{
		Name:            "Mặt Trăng",
		EnglishName:     "Moon",
		Description:     "Mặt Trăng là vệ tinh tự nhiên duy nhất của Trái Đất.",
		Diameter:        "3.474 km",
		DistanceFromSun: "khoảng 384.400 km tính từ Trái Đất",
		OrbitalPeriod:   "27,3 ngày quanh Trái Đất",
		DayLength:       "27,3 ngày",
		Temperature:     "từ -173°C đến 127°C",
		Facts: []string{
			"Mặt Trăng luôn quay một mặt về phía Trái Đất",
			"Năm 1969, Neil Armstrong là người đầu tiên đặt chân lên Mặt Trăng",
		},
	}},
	{id: "mars", facts: model.PlanetFacts{
		Name:            "Sao Hỏa",
		EnglishName:     "Mars",
		Description:     "Sao Hỏa là hành tinh đỏ, có màu đỏ do bề mặt chứa nhiều oxit sắt.",
		Diameter:        "6.779 km",
		DistanceFromSun: "227,9 triệu km",
		OrbitalPeriod:   "687 ngày Trái Đất",
		DayLength:       "24 giờ 37 phút",
		Temperature:     "trung bình khoảng -65°C",
		Moons:           2,
		Facts: []string{
			"Sao Hỏa có núi Olympus Mons, ngọn núi lửa cao nhất Hệ Mặt Trời",
			"Hai vệ tinh của Sao Hỏa là Phobos và Deimos",
			"Các xe tự hành Curiosity và Perseverance đang khám phá bề mặt Sao Hỏa",
		},
	}},
	{id: "jupiter", facts: model.PlanetFacts{
		Name:            "Sao Mộc",
		EnglishName:     "Jupiter",
		Description:     "Sao Mộc là hành tinh lớn nhất Hệ Mặt Trời, một hành tinh khí khổng lồ.",
		Diameter:        "139.820 km",
		DistanceFromSun: "778,5 triệu km",
		OrbitalPeriod:   "11,86 năm Trái Đất",
		DayLength:       "9 giờ 56 phút",
		Temperature:     "khoảng -110°C ở đỉnh mây",
		Moons:           95,
		Facts: []string{
			"Vết Đỏ Lớn trên Sao Mộc là một cơn bão lớn hơn cả Trái Đất",
			"Ganymede, vệ tinh của Sao Mộc, là vệ tinh lớn nhất Hệ Mặt Trời",
		},
	}},
	{id: "saturn", facts: model.PlanetFacts{
		Name:            "Sao Thổ",
		EnglishName:     "Saturn",
		Description:     "Sao Thổ nổi tiếng với hệ vành đai rực rỡ được tạo thành từ băng và đá.",
		Diameter:        "116.460 km",
		DistanceFromSun: "1,43 tỷ km",
		OrbitalPeriod:   "29,46 năm Trái Đất",
		DayLength:       "10 giờ 42 phút",
		Temperature:     "khoảng -140°C",
		Moons:           146,
		Facts: []string{
			"Sao Thổ có mật độ thấp hơn nước",
			"Titan, vệ tinh lớn nhất của Sao Thổ, có bầu khí quyển dày",
		},
	}},
	{id: "uranus", facts: model.PlanetFacts{
		Name:            "Sao Thiên Vương",
		EnglishName:     "Uranus",
		Description:     "Sao Thiên Vương là hành tinh băng khổng lồ quay nghiêng gần 98 độ so với mặt phẳng quỹ đạo.",
		Diameter:        "50.724 km",
		DistanceFromSun: "2,87 tỷ km",
		OrbitalPeriod:   "84 năm Trái Đất",
		DayLength:       "17 giờ 14 phút",
		Temperature:     "khoảng -195°C",
		Moons:           28,
		Facts: []string{
			"Sao Thiên Vương được William Herschel phát hiện năm 1781",
		},
	}},
	{id: "neptune", facts: model.PlanetFacts{
		Name:            "Sao Hải Vương",
		EnglishName:     "Neptune",
		Description:     "Sao Hải Vương là hành tinh xa Mặt Trời nhất, có những cơn gió mạnh nhất Hệ Mặt Trời.",
		Diameter:        "49.244 km",
		DistanceFromSun: "4,5 tỷ km",
		OrbitalPeriod:   "165 năm Trái Đất",
		DayLength:       "16 giờ 6 phút",
		Temperature:     "khoảng -200°C",
		Moons:           16,
		Facts: []string{
			"Gió trên Sao Hải Vương có thể đạt 2.100 km/h",
			"Sao Hải Vương được phát hiện nhờ tính toán toán học năm 1846",
		},
	}},
}
