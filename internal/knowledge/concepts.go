package knowledge

import "github.com/gcbaptista/space-chatbot/model"

var concepts = []conceptEntry{
	{id: "solar_system", facts: model.ConceptFacts{
		Name:        "Hệ Mặt Trời",
		Description: "Hệ Mặt Trời gồm Mặt Trời và các thiên thể quay quanh nó: 8 hành tinh, các hành tinh lùn, tiểu hành tinh và sao chổi.",
		Facts: []string{
			"Hệ Mặt Trời hình thành khoảng 4,6 tỷ năm trước",
			"Tám hành tinh theo thứ tự là Sao Thủy, Sao Kim, Trái Đất, Sao Hỏa, Sao Mộc, Sao Thổ, Sao Thiên Vương và Sao Hải Vương",
		},
	}},
	{id: "black_hole", facts: model.ConceptFacts{
		Name:        "Lỗ đen",
		Description: "Lỗ đen là vùng không-thời gian có lực hấp dẫn mạnh đến mức ngay cả ánh sáng cũng không thể thoát ra.",
		Facts: []string{
			"Lỗ đen hình thành khi một ngôi sao khối lượng lớn sụp đổ",
			"Năm 2019, bức ảnh đầu tiên về lỗ đen trong thiên hà M87 được công bố",
		},
	}},
	{id: "milky_way", facts: model.ConceptFacts{
		Name:        "Dải Ngân Hà",
		Description: "Dải Ngân Hà là thiên hà xoắn ốc chứa Hệ Mặt Trời, với khoảng 100 đến 400 tỷ ngôi sao.",
		Facts: []string{
			"Đường kính Dải Ngân Hà khoảng 100.000 năm ánh sáng",
			"Ở trung tâm Dải Ngân Hà có lỗ đen siêu khối lượng Sagittarius A*",
		},
	}},
	{id: "asteroid_belt", facts: model.ConceptFacts{
		Name:        "Vành đai tiểu hành tinh",
		Description: "Vành đai tiểu hành tinh nằm giữa quỹ đạo Sao Hỏa và Sao Mộc, chứa hàng triệu tiểu hành tinh.",
		Facts: []string{
			"Ceres là thiên thể lớn nhất trong vành đai và được xếp vào hành tinh lùn",
		},
	}},
	{id: "comet", facts: model.ConceptFacts{
		Name:        "Sao chổi",
		Description: "Sao chổi là thiên thể băng và bụi, khi đến gần Mặt Trời sẽ tạo ra đuôi sáng dài.",
		Facts: []string{
			"Sao chổi Halley xuất hiện khoảng 76 năm một lần",
		},
	}},
	{id: "light_year", facts: model.ConceptFacts{
		Name:        "Năm ánh sáng",
		Description: "Năm ánh sáng là khoảng cách ánh sáng đi được trong một năm, khoảng 9.460 tỷ km.",
		Facts: []string{
			"Năm ánh sáng là đơn vị đo khoảng cách, không phải đơn vị thời gian",
		},
	}},
}
