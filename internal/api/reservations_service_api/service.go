package reservations_service_api

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/rooms"
	"google.golang.org/grpc"
)

const ServiceName = "travelbooking.Reservations"

type ReservationsServer interface {
	SearchRooms(ctx context.Context, req *SearchRoomsRequest) (*rooms.Result, error)
	SearchRoutes(ctx context.Context, req *SearchRoutesRequest) (*SearchRoutesResponse, error)
	ReserveRoom(ctx context.Context, req *ReserveRoomRequest) (*domain.HotelBooking, error)
	ReserveFlight(ctx context.Context, req *ReserveFlightRequest) (*domain.FlightBooking, error)
	CancelHotelBooking(ctx context.Context, req *CancelRequest) (*domain.HotelBooking, error)
	CancelFlightBooking(ctx context.Context, req *CancelRequest) (*domain.FlightBooking, error)
}

func unary[Req any](name string, call func(ReservationsServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(ReservationsServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SearchRooms", func(s ReservationsServer, ctx context.Context, in *SearchRoomsRequest) (any, error) {
			return s.SearchRooms(ctx, in)
		}),
		unary("SearchRoutes", func(s ReservationsServer, ctx context.Context, in *SearchRoutesRequest) (any, error) {
			return s.SearchRoutes(ctx, in)
		}),
		unary("ReserveRoom", func(s ReservationsServer, ctx context.Context, in *ReserveRoomRequest) (any, error) {
			return s.ReserveRoom(ctx, in)
		}),
		unary("ReserveFlight", func(s ReservationsServer, ctx context.Context, in *ReserveFlightRequest) (any, error) {
			return s.ReserveFlight(ctx, in)
		}),
		unary("CancelHotelBooking", func(s ReservationsServer, ctx context.Context, in *CancelRequest) (any, error) {
			return s.CancelHotelBooking(ctx, in)
		}),
		unary("CancelFlightBooking", func(s ReservationsServer, ctx context.Context, in *CancelRequest) (any, error) {
			return s.CancelFlightBooking(ctx, in)
		}),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterReservationsServer(registrar grpc.ServiceRegistrar, server ReservationsServer) {
	registrar.RegisterService(&ServiceDesc, server)
}

// Client is a thin caller for the service; every call uses the JSON codec.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) SearchRooms(ctx context.Context, in *SearchRoomsRequest, opts ...grpc.CallOption) (*rooms.Result, error) {
	out := new(rooms.Result)
	if err := c.invoke(ctx, "SearchRooms", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchRoutes(ctx context.Context, in *SearchRoutesRequest, opts ...grpc.CallOption) (*SearchRoutesResponse, error) {
	out := new(SearchRoutesResponse)
	if err := c.invoke(ctx, "SearchRoutes", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReserveRoom(ctx context.Context, in *ReserveRoomRequest, opts ...grpc.CallOption) (*domain.HotelBooking, error) {
	out := new(domain.HotelBooking)
	if err := c.invoke(ctx, "ReserveRoom", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReserveFlight(ctx context.Context, in *ReserveFlightRequest, opts ...grpc.CallOption) (*domain.FlightBooking, error) {
	out := new(domain.FlightBooking)
	if err := c.invoke(ctx, "ReserveFlight", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelHotelBooking(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*domain.HotelBooking, error) {
	out := new(domain.HotelBooking)
	if err := c.invoke(ctx, "CancelHotelBooking", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelFlightBooking(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*domain.FlightBooking, error) {
	out := new(domain.FlightBooking)
	if err := c.invoke(ctx, "CancelFlightBooking", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
