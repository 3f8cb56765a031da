package knowledge

import "github.com/gcbaptista/space-chatbot/model"

var programs = []programEntry{
	{id: "pham_tuan", facts: model.ProgramFacts{
		Name:         "Phạm Tuân",
		Description:  "Phạm Tuân là phi hành gia đầu tiên của Việt Nam và của châu Á bay vào vũ trụ.",
		Year:         1980,
		Organization: "Chương trình Interkosmos",
		Achievements: []string{
			"Bay trên tàu Soyuz 37 ngày 23 tháng 7 năm 1980",
			"Thực hiện nhiều thí nghiệm khoa học trên trạm vũ trụ Salyut 6",
			"Được phong Anh hùng Lực lượng vũ trang nhân dân và Anh hùng Liên Xô",
		},
	}},
	{id: "vinasat_1", facts: model.ProgramFacts{
		Name:         "VINASAT-1",
		Description:  "VINASAT-1 là vệ tinh viễn thông đầu tiên của Việt Nam.",
		Year:         2008,
		Organization: "VNPT",
		Achievements: []string{
			"Phóng thành công ngày 19 tháng 4 năm 2008 từ Guiana thuộc Pháp",
			"Đặt tại vị trí quỹ đạo 132 độ Đông",
			"Cung cấp dịch vụ truyền hình, điện thoại và internet",
		},
	}},
	{id: "vinasat_2", facts: model.ProgramFacts{
		Name:         "VINASAT-2",
		Description:  "VINASAT-2 là vệ tinh viễn thông thứ hai của Việt Nam, mở rộng dung lượng truyền dẫn.",
		Year:         2012,
		Organization: "VNPT",
		Achievements: []string{
			"Phóng ngày 16 tháng 5 năm 2012",
			"Tuổi thọ thiết kế khoảng 15 năm",
		},
	}},
	{id: "vnredsat_1", facts: model.ProgramFacts{
		Name:         "VNREDSat-1",
		Description:  "VNREDSat-1 là vệ tinh quan sát Trái Đất đầu tiên của Việt Nam, dùng để giám sát tài nguyên, môi trường và thiên tai.",
		Year:         2013,
		Organization: "Viện Hàn lâm Khoa học và Công nghệ Việt Nam",
		Achievements: []string{
			"Phóng ngày 7 tháng 5 năm 2013",
			"Chụp ảnh quang học với độ phân giải 2,5 m",
		},
	}},
	{id: "picodragon", facts: model.ProgramFacts{
		Name:         "PicoDragon",
		Description:  "PicoDragon là vệ tinh siêu nhỏ đầu tiên do các kỹ sư Việt Nam tự thiết kế và chế tạo.",
		Year:         2013,
		Organization: "Trung tâm Vũ trụ Việt Nam",
		Achievements: []string{
			"Được thả từ Trạm Vũ trụ Quốc tế ISS tháng 11 năm 2013",
			"Nặng khoảng 1 kg theo chuẩn CubeSat",
		},
	}},
	{id: "microdragon", facts: model.ProgramFacts{
		Name:         "MicroDragon",
		Description:  "MicroDragon là vệ tinh quan sát biển do kỹ sư Việt Nam thiết kế, dùng để theo dõi chất lượng nước ven biển.",
		Year:         2019,
		Organization: "Trung tâm Vũ trụ Việt Nam",
		Achievements: []string{
			"Phóng bằng tên lửa Epsilon của Nhật Bản ngày 18 tháng 1 năm 2019",
			"Nặng khoảng 50 kg",
		},
	}},
	{id: "nanodragon", facts: model.ProgramFacts{
		Name:         "NanoDragon",
		Description:  "NanoDragon là vệ tinh nano do Việt Nam phát triển để thử nghiệm hệ thống nhận dạng tàu thuyền AIS.",
		Year:         2021,
		Organization: "Trung tâm Vũ trụ Việt Nam",
		Achievements: []string{
			"Phóng từ Nhật Bản ngày 9 tháng 11 năm 2021",
			"Thử nghiệm bộ điều khiển tư thế do Việt Nam chế tạo",
		},
	}},
	{id: "vnsc", facts: model.ProgramFacts{
		Name:         "Trung tâm Vũ trụ Việt Nam",
		Description:  "Trung tâm Vũ trụ Việt Nam là đơn vị nghiên cứu và phát triển công nghệ vệ tinh hàng đầu của Việt Nam.",
		Year:         2011,
		Organization: "Viện Hàn lâm Khoa học và Công nghệ Việt Nam",
		Achievements: []string{
			"Xây dựng Dự án Trung tâm Vũ trụ Việt Nam tại Khu Công nghệ cao Hòa Lạc",
			"Phát triển các vệ tinh PicoDragon, MicroDragon và NanoDragon",
			"Chuẩn bị vệ tinh radar LOTUSat-1",
		},
	}},
}
